package id

import (
	"strings"
	"testing"
)

func TestPrefixed(t *testing.T) {
	got := Prefixed("chatcmpl")
	if !strings.HasPrefix(got, "chatcmpl-") {
		t.Errorf("Prefixed() = %q, want chatcmpl- prefix", got)
	}
	if len(got) != len("chatcmpl-")+32 {
		t.Errorf("Prefixed() length = %d, want %d", len(got), len("chatcmpl-")+32)
	}
}

func TestPrefixedUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := Prefixed("req")
		if seen[s] {
			t.Fatalf("duplicate id generated: %s", s)
		}
		seen[s] = true
	}
}

func TestHex(t *testing.T) {
	got := Hex()
	if len(got) != 32 {
		t.Errorf("Hex() length = %d, want 32", len(got))
	}
	for _, c := range got {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("Hex() contains non-hex character %q", c)
		}
	}
}

func TestShort(t *testing.T) {
	got := Short()
	if len(got) != 16 {
		t.Errorf("Short() length = %d, want 16", len(got))
	}
	for _, c := range got {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("Short() contains non-hex character %q", c)
		}
	}
}

package template

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"math/rand/v2"
	"strconv"
)

const randomStringAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// funcRandomHex returns 8 random hex characters.
func funcRandomHex() string {
	b := make([]byte, 4)
	_, _ = cryptorand.Read(b)
	return hex.EncodeToString(b)
}

// funcRandomInt returns a random integer in [min, max] as a string.
func funcRandomInt(min, max int) string {
	if min > max {
		return ""
	}
	return strconv.Itoa(rand.IntN(max-min+1) + min)
}

// funcRandomFloat returns a random float in [min, max) formatted with
// the given number of decimal places.
func funcRandomFloat(min, max float64, precision int) string {
	if min > max {
		return ""
	}
	v := min + rand.Float64()*(max-min)
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// funcRandomString returns a random alphanumeric string.
func funcRandomString(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = randomStringAlphabet[rand.IntN(len(randomStringAlphabet))]
	}
	return string(b)
}

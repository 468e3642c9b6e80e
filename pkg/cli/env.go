package cli

import "os"

// envString returns the environment variable value or a fallback, so
// flags can default from INTERCEPTD_* variables.
func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

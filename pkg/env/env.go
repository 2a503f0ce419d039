package env

import "os"

// Get reads an environment variable, substituting fallback for unset or
// empty values.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

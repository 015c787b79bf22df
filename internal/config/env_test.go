package config

import (
	"os"
	"testing"
)

// unsetForTest unsets keys for the duration of the test. Call t.Setenv on the
// same keys first so the originals are restored on cleanup.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
}

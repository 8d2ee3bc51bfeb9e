// Package testing switches binaries into test mode when imported for side
// effects from a test package.
package testing

import (
	"os"
	"sync"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("USERSYNC_TEST_MODE", "1")
		if os.Getenv("USERSYNC_API_URL") == "" {
			_ = os.Setenv("USERSYNC_API_URL", "http://127.0.0.1:0")
		}
	})
}

func init() {
	ensureTestMode()
}

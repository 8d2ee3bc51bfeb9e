package app

import (
	"os"
	"strconv"
)

const testModeEnv = "USERSYNC_TEST_MODE"

// InTestMode reports whether binaries should skip runtime side effects.
func InTestMode() bool {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	return on
}

package app

import (
	"os"
	"sync/atomic"
)

const testModeEnv = "AQUANAV_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether runtime side effects like rate limiting should
// be skipped. The env flag is read once and cached.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	v := os.Getenv(testModeEnv) == "1"
	testMode.Store(&v)
	return v
}

// RefreshTestMode re-reads the env flag after a test mutates it.
func RefreshTestMode() {
	v := os.Getenv(testModeEnv) == "1"
	testMode.Store(&v)
}

package app

import "os"

// testModeEnv short-circuits the binaries so CI can exercise their wiring
// without dialing Postgres or Redis.
const testModeEnv = "TIENDA_TEST_MODE"

// InTestMode reports whether runtime side effects should be skipped.
func InTestMode() bool {
	return os.Getenv(testModeEnv) == "1"
}

package utils

import (
	"testing"

	"github.com/gracechapel/churchweb/config"
)

// testConfig points every external service somewhere unreachable so cache and
// mail degrade to no-ops; individual tests override what they exercise.
func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	return config.AppConfig{
		JWTSecret:      "utils-test-secret",
		RedisHost:      "127.0.0.1",
		RedisPort:      1,
		UploadDir:      t.TempDir(),
		GivingCurrency: "NGN",
		LogLevel:       "error",
	}
}

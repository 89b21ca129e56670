package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gracechapel/churchweb/config"
	"github.com/gracechapel/churchweb/controllers"
	"github.com/gracechapel/churchweb/models"
	"github.com/gracechapel/churchweb/routes"
	"github.com/gracechapel/churchweb/utils"
)

var (
	dbSeq      int64
	loggerOnce sync.Once
)

// testConfig builds a config with external services pointed nowhere reachable,
// so cache and mail degrade to no-ops. Tests that need a provider override the
// base URLs with an httptest server.
func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	return config.AppConfig{
		AppPort:            "8080",
		JWTSecret:          "test-secret",
		RateLimitPerMinute: 6000,
		AllowedOrigins:     []string{"*"},
		AdminUsername:      "admin",
		AdminPassword:      "secret-password",
		AdminEmail:         "admin@example.com",
		RedisHost:          "127.0.0.1",
		RedisPort:          1,
		StorageBackend:     "local",
		UploadDir:          t.TempDir(),
		GivingCurrency:     "NGN",
		GinMode:            "test",
		GinPath:            filepath.Join(t.TempDir(), "gin.log"),
		LogLevel:           "error",
	}
}

// newTestEnv boots a fresh in-memory database and router around the given
// config.
func newTestEnv(t *testing.T, cfg config.AppConfig) (*gorm.DB, *gin.Engine) {
	t.Helper()
	config.SetForTesting(cfg)
	loggerOnce.Do(func() {
		require.NoError(t, utils.InitLogger(cfg))
	})
	utils.InvalidateKnowledgeBase()

	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Sermon{},
		&models.Event{},
		&models.GalleryImage{},
		&models.Organization{},
		&models.AboutSection{},
		&models.CoreBelief{},
		&models.LeadershipMember{},
		&models.SiteSetting{},
		&models.UploadedFile{},
		&models.GivingTransaction{},
	))

	require.NoError(t, controllers.SeedAdminUser(db))
	return db, routes.SetupRouter(db)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateToken(1, "admin", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope mirrors the API response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}

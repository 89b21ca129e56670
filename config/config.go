package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	AppPort            string
	SiteBaseURL        string
	JWTSecret          string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Admin account (seeded on first boot)
	AdminUsername string
	AdminPassword string
	AdminEmail    string
	// SMTP for giving receipts
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      bool
	// Redis for caching
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Upload storage
	StorageBackend  string // local | s3 | blob
	UploadDir       string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3BaseEndpoint  string
	S3PublicBaseURL string
	BlobToken       string
	BlobBaseURL     string
	// Payment providers
	PaystackSecretKey    string
	PaystackBaseURL      string
	FlutterwaveSecretKey string
	FlutterwaveBaseURL   string
	FlutterwaveVerifHash string
	GivingCurrency       string
	// Chatbot LLM
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// SetForTesting replaces the cached configuration. Test helper only.
func SetForTesting(c AppConfig) {
	cfg = c
	loaded = true
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.SiteBaseURL = getString(app, "SiteBaseURL")
		out.JWTSecret = getString(app, "JWTSecret")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if adm, ok := raw["admin"].(map[string]any); ok {
		out.AdminUsername = getString(adm, "Username")
		out.AdminPassword = getString(adm, "Password")
		out.AdminEmail = getString(adm, "Email")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if sm, ok := raw["smtp"].(map[string]any); ok {
		out.SMTPHost = getString(sm, "SMTPHost")
		if v := getInt(sm, "SMTPPort"); v != 0 {
			out.SMTPPort = v
		}
		out.SMTPUsername = getString(sm, "SMTPUsername")
		out.SMTPPassword = getString(sm, "SMTPPassword")
		out.SMTPFrom = getString(sm, "SMTPFrom")
		out.SMTPFromName = getString(sm, "SMTPFromName")
		out.SMTPTLS = getBool(sm, "SMTPTLS")
	}

	if st, ok := raw["storage"].(map[string]any); ok {
		out.StorageBackend = getString(st, "Backend")
		out.UploadDir = getString(st, "UploadDir")
		out.S3Region = getString(st, "S3Region")
		out.S3Bucket = getString(st, "S3Bucket")
		out.S3AccessKey = getString(st, "S3AccessKey")
		out.S3SecretKey = getString(st, "S3SecretKey")
		out.S3BaseEndpoint = getString(st, "S3BaseEndpoint")
		out.S3PublicBaseURL = getString(st, "S3PublicBaseURL")
		out.BlobToken = getString(st, "BlobToken")
		out.BlobBaseURL = getString(st, "BlobBaseURL")
	}

	if pm, ok := raw["payments"].(map[string]any); ok {
		out.PaystackSecretKey = getString(pm, "PaystackSecretKey")
		out.PaystackBaseURL = getString(pm, "PaystackBaseURL")
		out.FlutterwaveSecretKey = getString(pm, "FlutterwaveSecretKey")
		out.FlutterwaveBaseURL = getString(pm, "FlutterwaveBaseURL")
		out.FlutterwaveVerifHash = getString(pm, "FlutterwaveVerifHash")
		out.GivingCurrency = getString(pm, "Currency")
	}

	if ai, ok := raw["llm"].(map[string]any); ok {
		out.LLMAPIKey = getString(ai, "APIKey")
		out.LLMBaseURL = getString(ai, "BaseURL")
		out.LLMModel = getString(ai, "Model")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getString(lg, "GinMode"); v != "" {
			out.GinMode = v
		}
		if v := getString(lg, "GinPath"); v != "" {
			out.GinPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

func applyDefaults(out *AppConfig) {
	if out.AppPort == "" {
		out.AppPort = "8080"
	}
	if out.SiteBaseURL == "" {
		out.SiteBaseURL = "http://localhost:" + out.AppPort
	}
	if out.RateLimitPerMinute == 0 {
		out.RateLimitPerMinute = 30
	}
	if len(out.AllowedOrigins) == 0 {
		out.AllowedOrigins = []string{"*"}
	}
	if out.DBHost == "" {
		out.DBHost = "127.0.0.1"
	}
	if out.DBPort == "" {
		out.DBPort = "3306"
	}
	if out.DBUser == "" {
		out.DBUser = "church"
	}
	if out.DBName == "" {
		out.DBName = "church"
	}
	if out.AdminUsername == "" {
		out.AdminUsername = "admin"
	}
	if out.SMTPPort == 0 {
		out.SMTPPort = 587
	}
	if out.RedisHost == "" {
		out.RedisHost = "127.0.0.1"
	}
	if out.RedisPort == 0 {
		out.RedisPort = 6379
	}
	if out.StorageBackend == "" {
		out.StorageBackend = "local"
	}
	if out.UploadDir == "" {
		out.UploadDir = filepath.Join(".", "static", "uploads")
	}
	if out.S3Region == "" {
		out.S3Region = "us-east-1"
	}
	if out.BlobBaseURL == "" {
		out.BlobBaseURL = "https://blob.vercel-storage.com"
	}
	if out.PaystackBaseURL == "" {
		out.PaystackBaseURL = "https://api.paystack.co"
	}
	if out.FlutterwaveBaseURL == "" {
		out.FlutterwaveBaseURL = "https://api.flutterwave.com"
	}
	if out.GivingCurrency == "" {
		out.GivingCurrency = "NGN"
	}
	if out.LLMBaseURL == "" {
		out.LLMBaseURL = "https://api.openai.com"
	}
	if out.LLMModel == "" {
		out.LLMModel = "gpt-4o-mini"
	}
	if out.GinMode == "" {
		out.GinMode = "release"
	}
	if out.GinPath == "" {
		out.GinPath = "logs/gin.log"
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	if out.LogPath == "" {
		out.LogPath = "logs/app.log"
	}
}

func applyEnvOverrides(out *AppConfig) {
	out.AppPort = getEnv("APP_PORT", out.AppPort)
	out.SiteBaseURL = getEnv("SITE_BASE_URL", out.SiteBaseURL)
	out.JWTSecret = getEnv("JWT_SECRET", out.JWTSecret)
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		res := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				res = append(res, s)
			}
		}
		if len(res) > 0 {
			out.AllowedOrigins = res
		}
	}

	out.DatabaseURI = getEnv("DATABASE_URI", out.DatabaseURI)
	out.DBHost = getEnv("DB_HOST", out.DBHost)
	out.DBPort = getEnv("DB_PORT", out.DBPort)
	out.DBUser = getEnv("DB_USER", out.DBUser)
	out.DBPassword = getEnv("DB_PASSWORD", out.DBPassword)
	out.DBName = getEnv("DB_NAME", out.DBName)

	out.AdminUsername = getEnv("ADMIN_USERNAME", out.AdminUsername)
	out.AdminPassword = getEnv("ADMIN_PASSWORD", out.AdminPassword)
	out.AdminEmail = getEnv("ADMIN_EMAIL", out.AdminEmail)

	out.SMTPHost = getEnv("SMTP_HOST", out.SMTPHost)
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.SMTPPort = n
		}
	}
	out.SMTPUsername = getEnv("SMTP_USERNAME", out.SMTPUsername)
	out.SMTPPassword = getEnv("SMTP_PASSWORD", out.SMTPPassword)
	out.SMTPFrom = getEnv("SMTP_FROM", out.SMTPFrom)
	out.SMTPFromName = getEnv("SMTP_FROM_NAME", out.SMTPFromName)
	if v := os.Getenv("SMTP_TLS"); v != "" {
		out.SMTPTLS = v == "1" || strings.EqualFold(v, "true")
	}

	out.RedisHost = getEnv("REDIS_HOST", out.RedisHost)
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.RedisPort = n
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.RedisDB = n
		}
	}
	out.RedisPassword = getEnv("REDIS_PASSWORD", out.RedisPassword)

	out.StorageBackend = getEnv("STORAGE_BACKEND", out.StorageBackend)
	out.UploadDir = getEnv("UPLOAD_DIR", out.UploadDir)
	out.S3Region = getEnv("S3_REGION", out.S3Region)
	out.S3Bucket = getEnv("S3_BUCKET", out.S3Bucket)
	out.S3AccessKey = getEnv("S3_ACCESS_KEY", out.S3AccessKey)
	out.S3SecretKey = getEnv("S3_SECRET_KEY", out.S3SecretKey)
	out.S3BaseEndpoint = getEnv("S3_BASE_ENDPOINT", out.S3BaseEndpoint)
	out.S3PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", out.S3PublicBaseURL)
	out.BlobToken = getEnv("BLOB_READ_WRITE_TOKEN", out.BlobToken)
	out.BlobBaseURL = getEnv("BLOB_BASE_URL", out.BlobBaseURL)

	out.PaystackSecretKey = getEnv("PAYSTACK_SECRET_KEY", out.PaystackSecretKey)
	out.PaystackBaseURL = getEnv("PAYSTACK_BASE_URL", out.PaystackBaseURL)
	out.FlutterwaveSecretKey = getEnv("FLUTTERWAVE_SECRET_KEY", out.FlutterwaveSecretKey)
	out.FlutterwaveBaseURL = getEnv("FLUTTERWAVE_BASE_URL", out.FlutterwaveBaseURL)
	out.FlutterwaveVerifHash = getEnv("FLUTTERWAVE_VERIF_HASH", out.FlutterwaveVerifHash)
	out.GivingCurrency = getEnv("GIVING_CURRENCY", out.GivingCurrency)

	out.LLMAPIKey = getEnv("LLM_API_KEY", out.LLMAPIKey)
	out.LLMBaseURL = getEnv("LLM_BASE_URL", out.LLMBaseURL)
	out.LLMModel = getEnv("LLM_MODEL", out.LLMModel)

	out.GinMode = getEnv("GIN_MODE", out.GinMode)
	out.GinPath = getEnv("GIN_LOG_PATH", out.GinPath)
	out.LogLevel = getEnv("LOG_LEVEL", out.LogLevel)
	out.LogPath = getEnv("LOG_PATH", out.LogPath)
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.LogMaxSizeMB = n
		}
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.LogMaxBackups = n
		}
	}
	if v := os.Getenv("LOG_MAX_AGE_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.LogMaxAgeDays = n
		}
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		out.LogCompress = v == "1" || strings.EqualFold(v, "true")
	}
}

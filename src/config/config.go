package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config ค่าตั้งค่าทั้งหมดของ server อ่านจาก .env / environment
type Config struct {
	AppPort        string
	AppBaseURL     string
	AllowedOrigins string

	MongoURI string
	MongoDB  string
	RedisURI string

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	CookieSecure     bool

	RateLimitMax    int
	RateLimitWindow time.Duration

	UploadDir      string
	MaxUploadBytes int64
	OCRURL         string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	AdminName       string
	AdminEmail      string
	AdminPassword   string
	SeedSampleForms bool
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}

	cfg := &Config{
		AppPort:        getEnv("APP_PORT", "8888"),
		AppBaseURL:     strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:5173"), "/"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "FeedbackPortalDB"),
		RedisURI: os.Getenv("REDIS_URI"),

		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", "your_access_secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "your_refresh_secret"),
		AccessTokenTTL:   getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		CookieSecure:     getBool("COOKIE_SECURE", false),

		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 2*1024*1024)),
		OCRURL:         os.Getenv("OCR_URL"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getInt("SMTP_PORT", 0),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		AdminName:       getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		SeedSampleForms: getBool("SEED_SAMPLE_FORMS", false),
	}

	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGO_URI environment variable not set. Please create a .env file and set it.")
	}
	return cfg
}

// Origins splits ALLOWED_ORIGINS into the comma list fiber's cors expects.
func (c *Config) Origins() string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

// SMTPEnabled reports whether every SMTP_* setting is present.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != 0 && c.SMTPUser != "" && c.SMTPPass != "" && c.SMTPFrom != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("15m") or plain milliseconds ("900000").
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	log.Printf("⚠️ invalid duration for %s=%q, using %s", key, raw, fallback)
	return fallback
}

package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory    = "memory"
	DriverFirestore = "firestore"
	DriverMongo     = "mongo"
)

type Config struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	StoreDriver          string
	FirestoreCredentials string
	FirestoreProjectID   string
	MongoURI             string
	DBName               string

	RedisAddr     string
	RedisPassword string
	UserCacheTTL  time.Duration

	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	AdminEmails      []string
}

// Load reads the server configuration from the environment. A .env file in
// the working directory is applied first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file loaded, using process environment")
	}

	cfg := Config{
		Port:                 getEnv("PORT", "5000"),
		GinMode:              getEnv("GIN_MODE", "release"),
		AllowedOrigins:       splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		StoreDriver:          getEnv("STORE_DRIVER", DriverMemory),
		FirestoreCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_1"),
		FirestoreProjectID:   os.Getenv("FIRESTORE_PROJECT_ID"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:               getEnv("DB_NAME", "teamboard"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		JWTSecret:            os.Getenv("JWT_SECRET_KEY"),
		JWTRefreshSecret:     os.Getenv("JWT_REFRESH_SECRET_KEY"),
		AdminEmails:          splitList(strings.ToLower(os.Getenv("ADMIN_EMAILS"))),
	}

	var err error
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.UserCacheTTL, err = getDuration("USER_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 60*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverFirestore, DriverMongo:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY and JWT_REFRESH_SECRET_KEY must be set")
	}
	if c.StoreDriver == DriverFirestore && c.FirestoreCredentials == "" && os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		return fmt.Errorf("environment variable GOOGLE_APPLICATION_CREDENTIALS_1 is not set")
	}
	return nil
}

// ClientConfig configures the terminal board client.
type ClientConfig struct {
	APIURL   string
	Email    string
	Password string
	Timeout  time.Duration
}

func LoadClient() (ClientConfig, error) {
	_ = godotenv.Load()

	timeout, err := getDuration("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return ClientConfig{}, err
	}
	cfg := ClientConfig{
		APIURL:   strings.TrimRight(getEnv("API_URL", "http://localhost:5000/api"), "/"),
		Email:    os.Getenv("BOARD_EMAIL"),
		Password: os.Getenv("BOARD_PASSWORD"),
		Timeout:  timeout,
	}
	if cfg.Email == "" || cfg.Password == "" {
		return ClientConfig{}, fmt.Errorf("BOARD_EMAIL and BOARD_PASSWORD must be set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

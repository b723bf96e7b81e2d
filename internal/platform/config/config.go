package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AtcoderProblemsBaseURL string
	AtcoderBaseURL         string

	PollIntervalSeconds         int
	ProblemsSyncIntervalSeconds int
	RatingsSyncIntervalSeconds  int

	InitialFetchEpoch int64
	LookbackSeconds   int64
	CooldownDays      int
	FlatBaseScore     int

	WeekAnchorWeekday time.Weekday
	WeekAnchorHour    int
	Timezone          string

	NotifyQueueName      string
	IngestLockPrefix     string
	IngestLockTTLSeconds int
	FetchMaxRetries      int
	FetchTimeoutSeconds  int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort: getEnv("API_PORT", "8080"),
		JWTKey:  []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:  time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "atcrank_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AtcoderProblemsBaseURL: getEnv("ATCODER_PROBLEMS_BASE_URL", "https://kenkoooo.com/atcoder"),
		AtcoderBaseURL:         getEnv("ATCODER_BASE_URL", "https://atcoder.jp"),

		PollIntervalSeconds:         getEnvAsInt("POLL_INTERVAL_SECONDS", 180),
		ProblemsSyncIntervalSeconds: getEnvAsInt("PROBLEMS_SYNC_INTERVAL_SECONDS", 21600),
		RatingsSyncIntervalSeconds:  getEnvAsInt("RATINGS_SYNC_INTERVAL_SECONDS", 21600),

		InitialFetchEpoch: getEnvAsInt64("INITIAL_FETCH_EPOCH", 0),
		LookbackSeconds:   getEnvAsInt64("LOOKBACK_SECONDS", 86400),
		CooldownDays:      getEnvAsInt("COOLDOWN_DAYS", 7),
		FlatBaseScore:     getEnvAsInt("FLAT_BASE_SCORE", 150),

		WeekAnchorWeekday: time.Weekday(getEnvAsInt("WEEK_ANCHOR_WEEKDAY", int(time.Monday))),
		WeekAnchorHour:    getEnvAsInt("WEEK_ANCHOR_HOUR", 7),
		Timezone:          getEnv("TIMEZONE", "Asia/Tokyo"),

		NotifyQueueName:      getEnv("NOTIFY_QUEUE_NAME", "ac_notifications_queue"),
		IngestLockPrefix:     getEnv("INGEST_LOCK_PREFIX", "ingest_lock:"),
		IngestLockTTLSeconds: getEnvAsInt("INGEST_LOCK_TTL_SECONDS", 300),
		FetchMaxRetries:      getEnvAsInt("FETCH_MAX_RETRIES", 3),
		FetchTimeoutSeconds:  getEnvAsInt("FETCH_TIMEOUT_SECONDS", 30),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return fallback
}

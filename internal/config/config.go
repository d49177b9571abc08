package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envEnvironment           = "APP_ENV"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envServerRateLimitRPS    = "RATE_LIMIT_RPS"
	envServerRateLimitBurst  = "RATE_LIMIT_BURST"
	envEnableProfiling       = "ENABLE_PROFILING"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envStorageBackend        = "STORAGE_BACKEND"
	envStorageRoot           = "UPLOAD_DIR"
	envPublicBaseURL         = "PUBLIC_BASE_URL"
	envMaxFileSize           = "MAX_FILE_SIZE"
	envMaxFilesPerRequest    = "MAX_FILES_PER_REQUEST"
	envRollbackTimeout       = "ROLLBACK_TIMEOUT"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envAWSBucket             = "S3_BUCKET"
	envAWSKeyPrefix          = "S3_KEY_PREFIX"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY_MINUTES"
	envRedisAddr             = "REDIS_ADDR"
	envRedisPassword         = "REDIS_PASSWORD"
	envRedisDB               = "REDIS_DB"
	envCacheTTL              = "CACHE_TTL"
	envCacheSize             = "CACHE_LRU_SIZE"
	envPaginationPageSize    = "PAGINATION_PAGE_SIZE"
	envPaginationMaxPageSize = "PAGINATION_MAX_PAGE_SIZE"
)

const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

const (
	defaultServerPort          = "5000"
	defaultEnvironment         = "development"
	defaultServerReadTimeout   = 30 * time.Second
	defaultServerWriteTimeout  = 60 * time.Second
	defaultServerShutdown      = 10 * time.Second
	defaultRateLimitRPS        = 50
	defaultRateLimitBurst      = 100
	defaultDBHost              = "localhost"
	defaultDBPort              = 5432
	defaultDBName              = "projects"
	defaultDBUser              = "projects_app"
	defaultDBSSLMode           = "disable"
	defaultDBMaxConns          = 25
	defaultDBMinConns          = 5
	defaultStorageBackend      = StorageBackendLocal
	defaultStorageRoot         = "uploads"
	defaultPublicBaseURL       = "/uploads"
	defaultMaxFileSize         = int64(10 * 1024 * 1024)
	defaultMaxFilesPerRequest  = 20
	defaultRollbackTimeout     = 30 * time.Second
	defaultJWTExpiry           = 24 * time.Hour
	defaultCacheTTL            = 5 * time.Minute
	defaultCacheSize           = 512
	defaultPageSize            = 10
	defaultMaxPageSize         = 100
	minJWTSecretLength         = 32
	minUniqueCharsInSecret     = 16
	minRepeatedCharThreshold   = 4
	maxRepeatedChars           = 2
	errPortRequiredFmt         = "PORT must be set"
	errDBPasswordRequiredFmt   = "DB_PASSWORD must be set"
	errJWTSecretRequiredFmt    = "JWT_SECRET must be set"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errInvalidConfigurationFmt = "invalid configuration: %w"
	errPageSizeFmt             = "PAGINATION_PAGE_SIZE must be between 1 and PAGINATION_MAX_PAGE_SIZE"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	AWS      AWSConfig
	JWT      JWTConfig
	Cache    CacheConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
	EnableProfiling bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

// StorageConfig controls where uploaded project files land and the limits
// applied to a single submission.
type StorageConfig struct {
	Backend            string
	Root               string
	PublicBaseURL      string
	MaxFileSize        int64
	MaxFilesPerRequest int
	RollbackTimeout    time.Duration
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	KeyPrefix       string
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
}

// CacheConfig selects Redis when Addr is set, the in-process LRU otherwise.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	LRUSize       int
}

type AppConfig struct {
	Environment string
	PageSize    int
	MaxPageSize int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
			RateLimitRPS:    getIntEnv(envServerRateLimitRPS, defaultRateLimitRPS),
			RateLimitBurst:  getIntEnv(envServerRateLimitBurst, defaultRateLimitBurst),
			EnableProfiling: getBoolEnv(envEnableProfiling, false),
		},
		Database: loadDatabaseConfig(requireEnv(envDBPassword)),
		Storage: StorageConfig{
			Backend:            strings.ToLower(getEnv(envStorageBackend, defaultStorageBackend)),
			Root:               getEnv(envStorageRoot, defaultStorageRoot),
			PublicBaseURL:      getEnv(envPublicBaseURL, defaultPublicBaseURL),
			MaxFileSize:        getInt64Env(envMaxFileSize, defaultMaxFileSize),
			MaxFilesPerRequest: getIntEnv(envMaxFilesPerRequest, defaultMaxFilesPerRequest),
			RollbackTimeout:    getDurationEnv(envRollbackTimeout, defaultRollbackTimeout),
		},
		AWS: AWSConfig{
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
			Bucket:          os.Getenv(envAWSBucket),
			KeyPrefix:       os.Getenv(envAWSKeyPrefix),
		},
		JWT: JWTConfig{
			Secret:         requireEnv(envJWTSecret),
			ExpiryDuration: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
		},
		Cache: CacheConfig{
			RedisAddr:     os.Getenv(envRedisAddr),
			RedisPassword: os.Getenv(envRedisPassword),
			RedisDB:       getIntEnv(envRedisDB, 0),
			TTL:           getDurationEnv(envCacheTTL, defaultCacheTTL),
			LRUSize:       getIntEnv(envCacheSize, defaultCacheSize),
		},
		App: AppConfig{
			Environment: getEnv(envEnvironment, defaultEnvironment),
			PageSize:    getIntEnv(envPaginationPageSize, defaultPageSize),
			MaxPageSize: getIntEnv(envPaginationMaxPageSize, defaultMaxPageSize),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings, for tools that never start
// the HTTP server.
func LoadDatabase() (*DatabaseConfig, error) {
	db := loadDatabaseConfig(os.Getenv(envDBPassword))
	if db.Password == "" {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, fmt.Errorf(errDBPasswordRequiredFmt))
	}
	return &db, nil
}

func loadDatabaseConfig(password string) DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv(envDBHost, defaultDBHost),
		Port:     getIntEnv(envDBPort, defaultDBPort),
		Database: getEnv(envDBName, defaultDBName),
		User:     getEnv(envDBUser, defaultDBUser),
		Password: password,
		SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
		MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
		MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Database.Password == "" {
		return fmt.Errorf(errDBPasswordRequiredFmt)
	}

	if err := c.Storage.validate(); err != nil {
		return err
	}

	if c.Storage.Backend == StorageBackendS3 {
		if err := c.AWS.validate(); err != nil {
			return err
		}
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	if !hasMinimumEntropy(c.JWT.Secret) {
		return fmt.Errorf(errJWTSecretLowEntropyFmt)
	}

	if c.App.PageSize < 1 || c.App.PageSize > c.App.MaxPageSize {
		return fmt.Errorf(errPageSizeFmt)
	}

	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Backend {
	case StorageBackendLocal:
		if s.Root == "" {
			return messages.requiredForBackend(envStorageRoot, s.Backend)
		}
	case StorageBackendS3:
	default:
		return messages.unknownBackend(s.Backend)
	}

	if s.MaxFileSize <= 0 {
		return messages.limitNotPositive(envMaxFileSize)
	}

	if s.MaxFilesPerRequest <= 0 {
		return messages.limitNotPositive(envMaxFilesPerRequest)
	}

	return nil
}

func (a *AWSConfig) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{envAWSRegion, a.Region},
		{envAWSAccessKeyID, a.AccessKeyID},
		{envAWSSecretAccessKey, a.SecretAccessKey},
		{envAWSBucket, a.Bucket},
	}

	for _, r := range required {
		if r.value == "" {
			return messages.requiredForBackend(r.key, StorageBackendS3)
		}
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	if len(charCounts) < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// MigrationURL is the pgx5:// URL understood by golang-migrate.
func (c *DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(messages.requiredEnvNotSet(key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

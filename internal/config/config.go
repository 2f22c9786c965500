package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultAPIBaseURL = "https://graph.facebook.com"
	DefaultAPIVersion = "v18.0"
	DefaultUserAgent  = "WhatsAppCatalogManager/1.0"
)

// Config is a read-only snapshot of everything the catalog client needs.
// Build it once with Load or New and share the pointer; use With to derive
// a modified copy.
type Config struct {
	// Meta credentials and identifiers
	AccessToken       string
	AppID             string
	AppSecret         string
	BusinessAccountID string
	PhoneNumberID     string
	CatalogID         string

	// Graph API
	APIBaseURL string `validate:"required,url"`
	APIVersion string `validate:"required"`
	UserAgent  string

	// Request execution
	MaxRequestsPerHour int           `validate:"gte=0"`
	RateWindow         time.Duration `validate:"gt=0"`
	RequestsPerSecond  float64       `validate:"gte=0"`
	RequestTimeout     time.Duration `validate:"gt=0"`
	MaxRetries         int           `validate:"gte=0,lte=10"`
	RetryDelay         time.Duration `validate:"gte=0"`
	MaxRetryDelay      time.Duration `validate:"gtefield=RetryDelay"`

	// Batching
	MaxBatchSize    int           `validate:"gt=0"`
	BatchChunkPause time.Duration `validate:"gte=0"`

	// Product defaults
	DefaultCurrency     string `validate:"required,len=3"`
	DefaultAvailability string `validate:"required"`
	DefaultCondition    string `validate:"required"`

	LogLevel string

	// Service
	Port              string
	Environment       string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	GCPProjectID      string
	AccessTokenSecret string
	ImportJobTimeout  time.Duration `validate:"gt=0"`
	CORSOrigins       []string
}

// Option overrides a single setting.
type Option func(*Config)

// New returns the built-in defaults with opts applied. It does not read the environment.
func New(opts ...Option) *Config {
	cfg := &Config{
		APIBaseURL:          DefaultAPIBaseURL,
		APIVersion:          DefaultAPIVersion,
		UserAgent:           DefaultUserAgent,
		MaxRequestsPerHour:  180,
		RateWindow:          time.Hour,
		RequestTimeout:      30 * time.Second,
		MaxRetries:          3,
		RetryDelay:          5 * time.Second,
		MaxRetryDelay:       2 * time.Minute,
		MaxBatchSize:        50,
		BatchChunkPause:     time.Second,
		DefaultCurrency:     "EUR",
		DefaultAvailability: "in stock",
		DefaultCondition:    "new",
		LogLevel:            "info",
		Port:                "8080",
		Environment:         "development",
		ImportJobTimeout:    2 * time.Hour,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads configuration from environment variables, then applies opts.
func Load(opts ...Option) *Config {
	d := New()
	baseURL, version := splitVersionedURL(getEnv("META_BASE_URL", d.APIBaseURL))
	if version == "" {
		version = d.APIVersion
	}
	cfg := &Config{
		AccessToken:       getEnv("META_ACCESS_TOKEN", ""),
		AppID:             getEnv("META_APP_ID", ""),
		AppSecret:         getEnv("META_APP_SECRET", ""),
		BusinessAccountID: getEnv("WHATSAPP_BUSINESS_ACCOUNT_ID", getEnv("META_BUSINESS_ID", "")),
		PhoneNumberID:     getEnv("PHONE_NUMBER_ID", ""),
		CatalogID:         getEnv("CATALOG_ID", getEnv("META_CATALOG_ID", "")),

		APIBaseURL: baseURL,
		APIVersion: getEnv("META_GRAPH_API_VERSION", version),
		UserAgent:  getEnv("USER_AGENT", d.UserAgent),

		MaxRequestsPerHour: getEnvAsInt("MAX_REQUESTS_PER_HOUR", d.MaxRequestsPerHour),
		RateWindow:         getEnvAsDuration("RATE_WINDOW", d.RateWindow),
		RequestsPerSecond:  getEnvAsFloat("REQUESTS_PER_SECOND", 0),
		RequestTimeout:     getEnvAsSeconds("REQUEST_TIMEOUT", d.RequestTimeout),
		MaxRetries:         getEnvAsInt("MAX_RETRIES", d.MaxRetries),
		RetryDelay:         getEnvAsSeconds("RETRY_DELAY", d.RetryDelay),
		MaxRetryDelay:      getEnvAsSeconds("MAX_RETRY_DELAY", d.MaxRetryDelay),

		MaxBatchSize:    getEnvAsInt("MAX_BATCH_SIZE", d.MaxBatchSize),
		BatchChunkPause: getEnvAsDuration("BATCH_CHUNK_PAUSE", d.BatchChunkPause),

		DefaultCurrency:     getEnv("DEFAULT_CURRENCY", d.DefaultCurrency),
		DefaultAvailability: getEnv("DEFAULT_AVAILABILITY", d.DefaultAvailability),
		DefaultCondition:    getEnv("DEFAULT_CONDITION", d.DefaultCondition),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", d.LogLevel)),

		Port:              getEnv("PORT", d.Port),
		Environment:       getEnv("ENVIRONMENT", d.Environment),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		NATSURL:           getEnv("NATS_URL", ""),
		GCPProjectID:      getEnv("GCP_PROJECT_ID", ""),
		AccessTokenSecret: getEnv("META_ACCESS_TOKEN_SECRET", ""),
		ImportJobTimeout:  getEnvAsDuration("IMPORT_JOB_TIMEOUT", d.ImportJobTimeout),
		CORSOrigins:       getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// With returns a copy of c with opts applied. c itself is left untouched.
func (c *Config) With(opts ...Option) *Config {
	cp := *c
	cp.CORSOrigins = append([]string(nil), c.CORSOrigins...)
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Validate checks numeric limits and defaults. Missing identifiers are not
// reported here; they are checked when an operation needs them.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// BaseURL is the versioned Graph API root, e.g. https://graph.facebook.com/v18.0.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.APIBaseURL, "/") + "/" + c.APIVersion
}

// CatalogURL is the products collection of the configured catalog.
func (c *Config) CatalogURL() string {
	return fmt.Sprintf("%s/%s/products", c.BaseURL(), c.CatalogID)
}

// MessagesURL is the messages endpoint of the configured phone number.
func (c *Config) MessagesURL() string {
	return fmt.Sprintf("%s/%s/messages", c.BaseURL(), c.PhoneNumberID)
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseDSN returns DATABASE_URL, or builds one from DB_* variables with the
// password fetched through the shared secrets helper.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := secrets.GetDBPassword()
	dbName := getEnv("DB_NAME", "whatsapp_catalog")
	dbSSLMode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)
}

func WithAccessToken(token string) Option {
	return func(c *Config) { c.AccessToken = token }
}

func WithCatalogID(id string) Option {
	return func(c *Config) { c.CatalogID = id }
}

func WithPhoneNumberID(id string) Option {
	return func(c *Config) { c.PhoneNumberID = id }
}

func WithBusinessAccountID(id string) Option {
	return func(c *Config) { c.BusinessAccountID = id }
}

// WithAPIBaseURL points the client at another Graph host, typically a test server.
func WithAPIBaseURL(baseURL string) Option {
	return func(c *Config) { c.APIBaseURL = strings.TrimRight(baseURL, "/") }
}

func WithAPIVersion(version string) Option {
	return func(c *Config) { c.APIVersion = version }
}

// WithRateLimit sets the fixed window budget.
func WithRateLimit(maxRequests int, window time.Duration) Option {
	return func(c *Config) {
		c.MaxRequestsPerHour = maxRequests
		c.RateWindow = window
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) { c.RequestTimeout = d }
}

// WithRetry sets the retry count and the backoff seed.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
		if c.MaxRetryDelay < delay {
			c.MaxRetryDelay = delay
		}
	}
}

// WithBatch sets the chunk size and the pause between chunks.
func WithBatch(size int, pause time.Duration) Option {
	return func(c *Config) {
		c.MaxBatchSize = size
		c.BatchChunkPause = pause
	}
}

// WithDefaults sets the values filled in for absent product fields.
func WithDefaults(currency, availability, condition string) Option {
	return func(c *Config) {
		c.DefaultCurrency = currency
		c.DefaultAvailability = availability
		c.DefaultCondition = condition
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getEnvAsSeconds accepts a plain number of seconds ("30") or a Go duration ("30s").
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	return getEnvAsDuration(key, defaultValue)
}

// splitVersionedURL separates a trailing Graph version segment, so both
// "https://graph.facebook.com" and "https://graph.facebook.com/v18.0" are accepted.
func splitVersionedURL(raw string) (string, string) {
	raw = strings.TrimRight(raw, "/")
	idx := strings.LastIndex(raw, "/")
	if idx < 0 {
		return raw, ""
	}
	last := raw[idx+1:]
	if len(last) > 1 && last[0] == 'v' {
		if _, err := strconv.ParseFloat(last[1:], 64); err == nil {
			return raw[:idx], last
		}
	}
	return raw, ""
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

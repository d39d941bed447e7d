// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config holding every default.
// - Load(ctx) layers a YAML file and PLATFORMER_ env vars over the defaults.
// - Validation errors wrap ErrInvalidConfig.
package config

// Store drivers.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// APIPath prefixes the authenticated routes.
	APIPath string `koanf:"api_path"`

	// Store selects the persistence driver: mongo or memory.
	Store string `koanf:"store"`

	MongoURI       string `koanf:"mongo_uri"`
	MongoDatabase  string `koanf:"mongo_database"`
	MongoTimeoutMS int    `koanf:"mongo_timeout_ms"`

	// TokenSecret signs session tokens (HS256).
	TokenSecret string `koanf:"token_secret"`

	// TokenCookie names the cookie and header carrying the token.
	TokenCookie string `koanf:"token_cookie"`

	// TokenExpireDays sets token and cookie lifetime.
	TokenExpireDays int `koanf:"token_expire_days"`

	BcryptCost int `koanf:"bcrypt_cost"`

	// AllowedOrigins is the CORS allowlist. Loaded by hand, see loadOrigins.
	AllowedOrigins []string `koanf:"-"`

	// LeaderboardCapacity bounds each ranking list.
	LeaderboardCapacity int `koanf:"leaderboard_capacity"`

	// MergeRetries bounds optimistic concurrency retries per submission.
	MergeRetries int `koanf:"merge_retries"`

	// MaxListLimit caps GET /api/levels?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// RevocationSize bounds the in-memory revoked token list.
	RevocationSize int `koanf:"revocation_size"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		APIPath:             "/api",
		Store:               StoreMongo,
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "platformer",
		MongoTimeoutMS:      5000,
		TokenSecret:         "change-me",
		TokenCookie:         "platformer-token",
		TokenExpireDays:     30,
		BcryptCost:          10,
		AllowedOrigins:      []string{"http://127.0.0.1:5500", "http://localhost:5500"},
		LeaderboardCapacity: 20,
		MergeRetries:        5,
		MaxListLimit:        200,
		RevocationSize:      100_000,
	}
}

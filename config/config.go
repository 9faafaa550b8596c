package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	apperrors "github.com/origon-labs/apiutils/errors"
	"github.com/origon-labs/apiutils/logger"
	"github.com/origon-labs/apiutils/util"
)

// Config holds every recognized setting, resolved once at construction.
// It is immutable afterwards and safe for concurrent reads.
type Config struct {
	order  []string
	values map[string]resolved
}

// resolved is one setting with its coerced value and provenance.
type resolved struct {
	setting Setting
	str     string
	num     int
	flag    bool
	source  Source
}

// Options configures construction. The zero value is production behavior.
type Options struct {
	// ConfigFolder overrides the declared default for CONFIG_FOLDER.
	// The CONFIG_FOLDER environment variable still wins.
	ConfigFolder string
	// EnvFile is an alternate .env path; empty means "./.env".
	EnvFile string
	// SkipDotEnv disables .env loading entirely (used by tests).
	SkipDotEnv bool
}

// Option is a functional option for New.
type Option func(*Options)

// WithConfigFolder overrides the default config folder.
func WithConfigFolder(path string) Option {
	return func(o *Options) { o.ConfigFolder = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// WithoutDotEnv disables .env loading.
func WithoutDotEnv() Option {
	return func(o *Options) { o.SkipDotEnv = true }
}

// New resolves the full setting registry and validates the result.
// A StartupConfig error from New is fatal: the caller must not start
// serving requests.
func New(opts ...Option) (*Config, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	if !o.SkipDotEnv {
		loadDotEnv(o.EnvFile)
	}

	// CONFIG_FOLDER has to be known before the file values can be read, so
	// it resolves first, from environment or default only.
	folderDefault := o.ConfigFolder
	if folderDefault == "" {
		folderDefault = defaultFor(ConfigFolder)
	}
	folder, folderSource := folderDefault, SourceDefault
	if v, ok := os.LookupEnv(ConfigFolder); ok {
		folder, folderSource = util.SanitizeEnvValue(v), SourceEnvironment
	}

	fileValues := loadFileValues(folder)

	cfg := &Config{values: make(map[string]resolved)}
	for _, s := range registry() {
		raw, source := s.Default, SourceDefault
		if v, ok := fileValues[s.Name]; ok {
			raw, source = v, SourceFile
		}
		// Environment values may arrive quoted from shell wrappers.
		if v, ok := os.LookupEnv(s.Name); ok {
			raw, source = util.SanitizeEnvValue(v), SourceEnvironment
		}
		if s.Name == ConfigFolder {
			raw, source = folder, folderSource
		}

		r, err := coerce(s, raw, source)
		if err != nil {
			return nil, err
		}
		cfg.values[s.Name] = r
		cfg.order = append(cfg.order, s.Name)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log := logger.WithComponent("config")
	for _, item := range cfg.Items() {
		log.Debug("Setting resolved", logger.Fields(
			logger.FieldSetting, item.Name,
			"value", item.Value,
			logger.FieldSource, string(item.Source),
		))
	}
	return cfg, nil
}

// coerce parses raw according to the setting's kind. Coercion failures are
// startup errors; the raw value of a secret setting is never echoed.
func coerce(s Setting, raw string, source Source) (resolved, error) {
	r := resolved{setting: s, str: raw, source: source}
	switch s.Kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return resolved{}, apperrors.StartupConfig(
				fmt.Sprintf("setting %s must be an integer (from %s)", s.Name, source))
		}
		r.num = n
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return resolved{}, apperrors.StartupConfig(
				fmt.Sprintf("setting %s must be a boolean (from %s)", s.Name, source))
		}
		r.flag = b
	}
	return r, nil
}

// validate enforces the start-up safety invariants.
func (c *Config) validate() error {
	env := c.values[Environment].str
	switch env {
	case "development", "staging", "production":
	default:
		return apperrors.StartupConfig(
			fmt.Sprintf("ENVIRONMENT must be one of [development, staging, production] (got: %s)", env))
	}

	// Never serve with a guessable signing secret outside development.
	if env != "development" && c.values[JWTSecret].str == DefaultJWTSecret {
		return apperrors.StartupConfig(
			"JWT_SECRET is still the insecure default; refusing to start in " + env)
	}

	switch c.values[JWTAlgorithm].str {
	case "HS256", "HS384", "HS512":
	default:
		return apperrors.StartupConfig(
			fmt.Sprintf("JWT_ALGORITHM must be one of [HS256, HS384, HS512] (got: %s)", c.values[JWTAlgorithm].str))
	}

	if ttl := c.values[JWTTTLMinutes].num; ttl <= 0 {
		return apperrors.StartupConfig(
			fmt.Sprintf("JWT_TTL_MINUTES must be positive (got: %d)", ttl))
	}
	if port := c.values[APIPort].num; port < 0 || port > 65535 {
		return apperrors.StartupConfig(
			fmt.Sprintf("API_PORT must be between 0 and 65535 (got: %d)", port))
	}
	return nil
}

// Get returns the resolved value (string, int, or bool) for a recognized
// setting name. Unrecognized names fail with an UnknownSetting error.
func (c *Config) Get(name string) (any, error) {
	r, ok := c.values[name]
	if !ok {
		return nil, apperrors.UnknownSetting(name)
	}
	switch r.setting.Kind {
	case KindInt:
		return r.num, nil
	case KindBool:
		return r.flag, nil
	default:
		return r.str, nil
	}
}

// GetString returns the string rendering of a recognized setting.
func (c *Config) GetString(name string) (string, error) {
	r, ok := c.values[name]
	if !ok {
		return "", apperrors.UnknownSetting(name)
	}
	return r.str, nil
}

// GetInt returns the integer value of a recognized int setting.
func (c *Config) GetInt(name string) (int, error) {
	r, ok := c.values[name]
	if !ok {
		return 0, apperrors.UnknownSetting(name)
	}
	if r.setting.Kind != KindInt {
		return 0, apperrors.Validation(fmt.Sprintf("setting %s is not an integer", name))
	}
	return r.num, nil
}

// GetBool returns the boolean value of a recognized bool setting.
func (c *Config) GetBool(name string) (bool, error) {
	r, ok := c.values[name]
	if !ok {
		return false, apperrors.UnknownSetting(name)
	}
	if r.setting.Kind != KindBool {
		return false, apperrors.Validation(fmt.Sprintf("setting %s is not a boolean", name))
	}
	return r.flag, nil
}

// SourceOf reports where a recognized setting's value came from.
func (c *Config) SourceOf(name string) (Source, error) {
	r, ok := c.values[name]
	if !ok {
		return "", apperrors.UnknownSetting(name)
	}
	return r.source, nil
}

// Items returns the display-safe view of every setting in registry order.
// Secret values are replaced with the fixed placeholder; the stored values
// are left untouched. The slice is freshly built on every call.
func (c *Config) Items() []Item {
	items := make([]Item, 0, len(c.order))
	for _, name := range c.order {
		r := c.values[name]
		value := r.str
		if r.setting.Secret {
			value = SecretPlaceholder
		}
		items = append(items, Item{Name: name, Value: value, Source: r.source})
	}
	return items
}

// --- Typed accessors for the registered settings ---

func (c *Config) Port() int                     { return c.values[APIPort].num }
func (c *Config) BuildStamp() string            { return c.values[BuiltAt].str }
func (c *Config) Folder() string                { return c.values[ConfigFolder].str }
func (c *Config) Docs() string                  { return c.values[DocsFolder].str }
func (c *Config) Env() string                   { return c.values[Environment].str }
func (c *Config) LoginEnabled() bool            { return c.values[EnableLogin].flag }
func (c *Config) JWTSigningAlgorithm() string   { return c.values[JWTAlgorithm].str }
func (c *Config) JWTAudienceClaim() string      { return c.values[JWTAudience].str }
func (c *Config) JWTIssuerClaim() string        { return c.values[JWTIssuer].str }
func (c *Config) JWTSigningSecret() string      { return c.values[JWTSecret].str }
func (c *Config) MongoURI() string              { return c.values[MongoConnectionString].str }
func (c *Config) MongoDatabase() string         { return c.values[MongoDBName].str }
func (c *Config) EnumeratorsCollection() string { return c.values[EnumeratorsCollectionName].str }
func (c *Config) VersionsCollection() string    { return c.values[VersionsCollectionName].str }

// JWTTTL returns the issued-token lifetime.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.values[JWTTTLMinutes].num) * time.Minute
}

// JWTSecretIsDefault reports whether the signing secret is still the
// documented insecure default. Token validation uses this to decide whether
// signature verification is possible.
func (c *Config) JWTSecretIsDefault() bool {
	return c.values[JWTSecret].str == DefaultJWTSecret
}

// IsDevelopment reports whether the process runs in the development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.Env() == "development"
}

func defaultFor(name string) string {
	for _, s := range registry() {
		if s.Name == name {
			return s.Default
		}
	}
	return ""
}

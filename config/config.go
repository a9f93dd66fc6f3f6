package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"pushrelay/internal/domain/constants"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
	defaultRetentionWindow    = 7 * 24 * time.Hour
	defaultSweepInterval      = time.Hour
	defaultSweepTimeout       = time.Minute
	defaultPushTimeout        = 10 * time.Second
	defaultPushTTL            = 24 * time.Hour
	defaultBadgerDir          = "data/relay"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
		// SendRateLimit throttles POST / per client IP; nil or zero disables it.
		SendRateLimit *RateLimitConfig `json:"sendRateLimit" yaml:"sendRateLimit"`
	} `json:"http" yaml:"http"`

	Storage StorageConfig `json:"storage" yaml:"storage"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// VAPID identifies this relay to push services. All three values are required.
	VAPID VAPIDConfig `json:"vapid" yaml:"vapid"`

	Push PushConfig `json:"push" yaml:"push"`

	Retention RetentionConfig `json:"retention" yaml:"retention"`

	// QRCode configuration for pairing QR codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// RateLimitConfig defines a token bucket per client IP
type RateLimitConfig struct {
	RequestsPerSecond float64       `json:"requestsPerSecond" yaml:"requestsPerSecond"`
	Burst             int           `json:"burst" yaml:"burst"`
	ExpiresIn         time.Duration `json:"expiresIn" yaml:"expiresIn"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	// Driver is "postgres" or "badger"
	Driver string `json:"driver" yaml:"driver"`

	// AutoMigrate creates the postgres tables on start
	AutoMigrate bool `json:"autoMigrate" yaml:"autoMigrate"`

	Badger BadgerConfig `json:"badger" yaml:"badger"`
}

// BadgerConfig defines the embedded store location
type BadgerConfig struct {
	Dir string `json:"dir" yaml:"dir"`
	// InMemory keeps everything in RAM; intended for local runs and tests
	InMemory bool `json:"inMemory" yaml:"inMemory"`
}

// VAPIDConfig holds the application server key pair and contact subject
type VAPIDConfig struct {
	PublicKey  string `json:"publicKey" yaml:"publicKey"`
	PrivateKey string `json:"privateKey" yaml:"privateKey"`
	// Subject is a mailto: or https: URL push services can use to reach the operator
	Subject string `json:"subject" yaml:"subject"`
}

// Validate fails when any VAPID value is missing
func (v VAPIDConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(v.PublicKey) == "" {
		missing = append(missing, "vapid.publicKey")
	}
	if strings.TrimSpace(v.PrivateKey) == "" {
		missing = append(missing, "vapid.privateKey")
	}
	if strings.TrimSpace(v.Subject) == "" {
		missing = append(missing, "vapid.subject")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing VAPID configuration: %s (generate keys with cmd/vapidkeys)", strings.Join(missing, ", "))
	}

	return nil
}

// PushConfig tunes outgoing Web Push requests
type PushConfig struct {
	// Timeout bounds a single push-service request
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// TTL tells the push service how long to hold a message for an offline device
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// Urgency is one of very-low, low, normal, high
	Urgency string `json:"urgency" yaml:"urgency"`

	CircuitBreaker CircuitBreakerConfig `json:"circuitBreaker" yaml:"circuitBreaker"`
}

// CircuitBreakerConfig defines the per push-service host breaker
type CircuitBreakerConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ConsecutiveFailures trips the breaker
	ConsecutiveFailures uint32 `json:"consecutiveFailures" yaml:"consecutiveFailures"`

	// OpenTimeout is how long the breaker stays open before letting a probe through
	OpenTimeout time.Duration `json:"openTimeout" yaml:"openTimeout"`
}

// RetentionConfig defines queued message expiry
type RetentionConfig struct {
	// Window is how long an undrained message is kept
	Window time.Duration `json:"window" yaml:"window"`

	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval"`

	// SweepTimeout bounds one purge pass
	SweepTimeout time.Duration `json:"sweepTimeout" yaml:"sweepTimeout"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
	BaseURL              string `json:"baseUrl" yaml:"baseUrl"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.VAPID.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = constants.StorageDriverBadger
	}

	switch cfg.Storage.Driver {
	case constants.StorageDriverPostgres:
		if cfg.Postgres == nil {
			return errors.New("storage.driver is postgres but the postgres section is missing")
		}
		// Token lookups must see writes immediately, so every query goes to the primary.
		cfg.Postgres.Replicas = nil
	case constants.StorageDriverBadger:
		if cfg.Storage.Badger.Dir == "" && !cfg.Storage.Badger.InMemory {
			cfg.Storage.Badger.Dir = defaultBadgerDir
		}
	default:
		return errors.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	if cfg.Push.Timeout <= 0 {
		cfg.Push.Timeout = defaultPushTimeout
	}
	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = defaultPushTTL
	}

	if cfg.Retention.Window <= 0 {
		cfg.Retention.Window = defaultRetentionWindow
	}
	if cfg.Retention.SweepInterval <= 0 {
		cfg.Retention.SweepInterval = defaultSweepInterval
	}
	if cfg.Retention.SweepTimeout <= 0 {
		cfg.Retention.SweepTimeout = defaultSweepTimeout
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := slices.DeleteFunc(strings.Split(strings.ToLower(rawKey), "_"), func(s string) bool {
		return s == ""
	})
	canonical := make([]string, 0, len(segments))
	current := existing

	for i := 0; i < len(segments); {
		matched, next, width := matchSegments(current, segments[i:])
		if width == 0 {
			canonical = append(canonical, segments[i])
			current = nil
			i++

			continue
		}

		canonical = append(canonical, matched)
		current = next
		i += width
	}

	return strings.Join(canonical, ".")
}

// matchSegments finds the longest run of leading segments naming an existing key,
// so VAPID_PUBLIC_KEY resolves to vapid.publicKey as well as VAPID_PUBLICKEY does.
func matchSegments(current map[string]any, segments []string) (matched string, next map[string]any, width int) {
	for width = len(segments); width > 0; width-- {
		if key, child, ok := findExistingSegment(current, strings.Join(segments[:width], "")); ok {
			return key, child, width
		}
	}

	return "", nil, 0
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

package shield

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/gateways/mongo"
	"github.com/gatekeep/shield/shield/database"
	"github.com/pelletier/go-toml/v2"
)

const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).DisallowUnknownFields().Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log          LogConfig          `toml:"log"`
	Bot          BotConfig          `toml:"bot"`
	DB           database.DBConfig  `toml:"db"`
	Storage      StorageConfig      `toml:"storage"`
	Mongo        mongo.Config       `toml:"mongo"`
	Web          WebConfig          `toml:"web"`
	Verification VerificationConfig `toml:"verification"`
	Menu         MenuConfig         `toml:"menu"`
	Spaces       SpacesConfig       `toml:"spaces"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type BotConfig struct {
	Token        string         `toml:"token"`
	DevGuilds    []snowflake.ID `toml:"dev_guilds"`
	LogChannelID snowflake.ID   `toml:"log_channel_id"`
}

type StorageConfig struct {
	Driver        string   `toml:"driver"`
	PurgeInterval Duration `toml:"purge_interval"`
	Retention     Duration `toml:"retention"`
}

type WebConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// PublicURL is the externally reachable base used in verification links.
	PublicURL      string   `toml:"public_url"`
	RateLimit      int      `toml:"rate_limit"`
	RateWindow     Duration `toml:"rate_window"`
	ProxyHeader    string   `toml:"proxy_header"`
	TrustedProxies []string `toml:"trusted_proxies"`
}

func (w WebConfig) Address() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

type VerificationConfig struct {
	RequestTTL        Duration `toml:"request_ttl"`
	InviteTTL         Duration `toml:"invite_ttl"`
	MessengerTimeout  Duration `toml:"messenger_timeout"`
	SessionTTL        Duration `toml:"session_ttl"`
	SessionCapacity   int      `toml:"session_capacity"`
	IdentityMaxDigits int      `toml:"identity_max_digits"`
	DedupeOnAppend    bool     `toml:"dedupe_on_append"`
}

type MenuConfig struct {
	SessionTTL Duration `toml:"session_ttl"`
	PageSize   int      `toml:"page_size"`
}

type SpacesConfig struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
	Region string `toml:"region"`
	Bucket string `toml:"bucket"`
	Prefix string `toml:"prefix"`
}

func (s SpacesConfig) Enabled() bool {
	return s.Bucket != ""
}

// Duration decodes TOML strings such as "90s" or "1h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = StoragePostgres
	}
	if c.Storage.PurgeInterval.Duration == 0 {
		c.Storage.PurgeInterval.Duration = time.Hour
	}
	if c.Storage.Retention.Duration == 0 {
		c.Storage.Retention.Duration = 7 * 24 * time.Hour
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "shield"
	}
	if c.Web.Host == "" {
		c.Web.Host = "0.0.0.0"
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8080
	}
	if c.Web.RateLimit == 0 {
		c.Web.RateLimit = 30
	}
	if c.Web.RateWindow.Duration == 0 {
		c.Web.RateWindow.Duration = time.Minute
	}
	if c.Web.PublicURL == "" {
		c.Web.PublicURL = fmt.Sprintf("http://localhost:%d", c.Web.Port)
	}
	c.Web.PublicURL = strings.TrimRight(c.Web.PublicURL, "/")

	v := &c.Verification
	if v.RequestTTL.Duration == 0 {
		v.RequestTTL.Duration = time.Hour
	}
	if v.InviteTTL.Duration == 0 {
		v.InviteTTL.Duration = time.Hour
	}
	if v.MessengerTimeout.Duration == 0 {
		v.MessengerTimeout.Duration = 10 * time.Second
	}
	if v.SessionTTL.Duration == 0 {
		v.SessionTTL.Duration = v.RequestTTL.Duration
	}
	if v.SessionCapacity == 0 {
		v.SessionCapacity = 10000
	}
	if v.IdentityMaxDigits == 0 {
		v.IdentityMaxDigits = 20
	}

	if c.Menu.SessionTTL.Duration == 0 {
		c.Menu.SessionTTL.Duration = 15 * time.Minute
	}
	if c.Menu.PageSize == 0 {
		c.Menu.PageSize = 10
	}
}

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StoragePostgres:
		if c.DB.Host == "" || c.DB.Database == "" {
			errs = append(errs, errors.New("db.host and db.database are required for the postgres driver"))
		}
	case StorageMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri is required for the mongo driver"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web.port %d out of range", c.Web.Port))
	}
	if !strings.HasPrefix(c.Web.PublicURL, "http://") && !strings.HasPrefix(c.Web.PublicURL, "https://") {
		errs = append(errs, fmt.Errorf("web.public_url %q must be an http(s) URL", c.Web.PublicURL))
	}
	if c.Web.RateLimit < 0 {
		errs = append(errs, errors.New("web.rate_limit must not be negative"))
	}

	v := c.Verification
	if v.RequestTTL.Duration < time.Minute {
		errs = append(errs, errors.New("verification.request_ttl must be at least 1m"))
	}
	if v.MessengerTimeout.Duration <= 0 {
		errs = append(errs, errors.New("verification.messenger_timeout must be positive"))
	}
	if v.SessionCapacity < 0 {
		errs = append(errs, errors.New("verification.session_capacity must not be negative"))
	}
	if v.IdentityMaxDigits < 1 || v.IdentityMaxDigits > 20 {
		errs = append(errs, fmt.Errorf("verification.identity_max_digits %d must be between 1 and 20", v.IdentityMaxDigits))
	}
	if c.Menu.PageSize < 1 || c.Menu.PageSize > 25 {
		errs = append(errs, fmt.Errorf("menu.page_size %d must be between 1 and 25", c.Menu.PageSize))
	}
	if c.Spaces.Enabled() && (c.Spaces.Key == "" || c.Spaces.Secret == "" || c.Spaces.Region == "") {
		errs = append(errs, errors.New("spaces.key, spaces.secret and spaces.region are required when spaces.bucket is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

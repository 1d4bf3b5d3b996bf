package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Config struct {
	Icecast struct {
		Host          string `mapstructure:"host"`
		Port          string `mapstructure:"port"`
		MountPoint    string `mapstructure:"mount_point"`
		AdminUser     string `mapstructure:"admin_user"`
		AdminPassword string `mapstructure:"admin_password"` // not used by the read path
		StatusPath    string `mapstructure:"status_path"`
		StatusURL     string `mapstructure:"status_url"` // overrides host/port/status_path
		UserAgent     string `mapstructure:"user_agent"`
		TimeoutMS     int    `mapstructure:"timeout_ms"`
	} `mapstructure:"icecast"`
	Sync struct {
		IntervalMS              int `mapstructure:"interval_ms"`
		HistoryLimit            int `mapstructure:"history_limit"`
		HistoryView             int `mapstructure:"history_view"`
		DurationEstimateSeconds int `mapstructure:"duration_estimate_seconds"`
		MaxSimulatedListeners   int `mapstructure:"max_simulated_listeners"`
	} `mapstructure:"sync"`
	Cache struct {
		CurrentTrackTTLMS int `mapstructure:"current_track_ttl_ms"`
		StreamStatusTTLMS int `mapstructure:"stream_status_ttl_ms"`
		DocumentTTLMS     int `mapstructure:"document_ttl_ms"`
	} `mapstructure:"cache"`
	Store struct {
		Backend      string `mapstructure:"backend"` // file, s3, sqlite, postgres
		DataDir      string `mapstructure:"data_dir"`
		PlaylistSeed string `mapstructure:"playlist_seed"`
	} `mapstructure:"store"`
	Storage struct {
		KeyID    string `mapstructure:"key_id"`
		AppKey   string `mapstructure:"app_key"`
		Endpoint string `mapstructure:"endpoint"`
		Region   string `mapstructure:"region"`
		Bucket   string `mapstructure:"bucket"`
		Prefix   string `mapstructure:"prefix"`
	} `mapstructure:"storage"`
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		Path     string `mapstructure:"path"` // sqlite file
	} `mapstructure:"database"`
	Server struct {
		Addr           string `mapstructure:"addr"`
		MetricsPort    string `mapstructure:"metrics_port"`
		LogLevel       string `mapstructure:"log_level"`
		LiveIntervalMS int    `mapstructure:"live_interval_ms"`
	} `mapstructure:"server"`
	GeoIP struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"geoip"`
	Services struct {
		EnrichGenre bool   `mapstructure:"enrich_genre"`
		ITunesURL   string `mapstructure:"itunes_url"`
	} `mapstructure:"services"`

	v *viper.Viper
}

// legacyEnv maps keys to the unprefixed variable names of older deployments.
var legacyEnv = map[string]string{
	"icecast.host":           "ICECAST_HOST",
	"icecast.port":           "ICECAST_PORT",
	"icecast.mount_point":    "ICECAST_MOUNT_POINT",
	"icecast.admin_user":     "ICECAST_ADMIN_USER",
	"icecast.admin_password": "ICECAST_ADMIN_PASSWORD",
	"icecast.status_url":     "ICECAST_STATUS_URL",
}

// Load reads config.yaml (or configFile when set) and RADIO_* environment
// variables on top of the defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RADIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Register keys
	for _, key := range []string{
		"icecast.user_agent", "icecast.status_path", "icecast.timeout_ms",
		"sync.interval_ms", "sync.history_limit", "sync.history_view", "sync.duration_estimate_seconds", "sync.max_simulated_listeners",
		"cache.current_track_ttl_ms", "cache.stream_status_ttl_ms", "cache.document_ttl_ms",
		"store.backend", "store.data_dir", "store.playlist_seed",
		"storage.key_id", "storage.app_key", "storage.endpoint", "storage.region", "storage.bucket", "storage.prefix",
		"database.host", "database.port", "database.user", "database.password", "database.name", "database.path",
		"server.addr", "server.metrics_port", "server.log_level", "server.live_interval_ms",
		"geoip.path",
		"services.enrich_genre", "services.itunes_url",
	} {
		v.BindEnv(key)
	}
	for key, legacy := range legacyEnv {
		v.BindEnv(key, "RADIO_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy)
	}

	// Defaults
	v.SetDefault("icecast.host", "localhost")
	v.SetDefault("icecast.port", "8000")
	v.SetDefault("icecast.mount_point", "/stream")
	v.SetDefault("icecast.admin_user", "admin")
	v.SetDefault("icecast.status_path", "/status-json.xsl")
	v.SetDefault("icecast.user_agent", "MyRadio/1.0")
	v.SetDefault("icecast.timeout_ms", 5000)

	v.SetDefault("sync.interval_ms", 5000)
	v.SetDefault("sync.history_limit", 100)
	v.SetDefault("sync.history_view", 20)
	v.SetDefault("sync.duration_estimate_seconds", 180)
	v.SetDefault("sync.max_simulated_listeners", 100)

	v.SetDefault("cache.current_track_ttl_ms", 3000)
	v.SetDefault("cache.stream_status_ttl_ms", 5000)
	v.SetDefault("cache.document_ttl_ms", 5000)

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.data_dir", "./data")
	v.SetDefault("storage.prefix", "radio-state")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.path", "./data/radio.db")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_port", ":9091")
	v.SetDefault("server.log_level", "error")
	v.SetDefault("server.live_interval_ms", 2000)

	v.SetDefault("services.itunes_url", "https://itunes.apple.com/search")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("../")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Println("Info: config.yaml not found, using Environment Variables only.")
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.v = v
	return &cfg, nil
}

// Validate rejects values the sync loop cannot run with.
func (c *Config) Validate() error {
	if c.Sync.IntervalMS <= 0 {
		return fmt.Errorf("sync.interval_ms must be positive, got %d", c.Sync.IntervalMS)
	}
	if c.Sync.HistoryLimit <= 0 {
		return fmt.Errorf("sync.history_limit must be positive, got %d", c.Sync.HistoryLimit)
	}
	if c.Sync.MaxSimulatedListeners < 0 {
		return fmt.Errorf("sync.max_simulated_listeners must not be negative, got %d", c.Sync.MaxSimulatedListeners)
	}
	if c.Icecast.MountPoint != "" && !strings.HasPrefix(c.Icecast.MountPoint, "/") {
		return fmt.Errorf("icecast.mount_point must start with '/', got %q", c.Icecast.MountPoint)
	}
	switch c.Store.Backend {
	case "file", "s3", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "s3" && c.Storage.Bucket == "" {
		return errors.New("store.backend=s3 needs storage.bucket (RADIO_STORAGE_BUCKET)")
	}
	return nil
}

// Watch calls onChange with the re-read config whenever the config file
// changes. Invalid edits are logged and ignored.
func (c *Config) Watch(onChange func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(c.v)
		if err != nil {
			log.Printf("⚠️ Config reload rejected (%s): %v", e.Name, err)
			return
		}
		log.Printf("🔄 Config reloaded from %s", e.Name)
		onChange(next)
	})
	c.v.WatchConfig()
}

// StatusURL is the Icecast JSON status endpoint.
func (c *Config) StatusURL() string {
	if c.Icecast.StatusURL != "" {
		return c.Icecast.StatusURL
	}
	return fmt.Sprintf("http://%s:%s%s", c.Icecast.Host, c.Icecast.Port, c.Icecast.StatusPath)
}

// StreamURL is the public listen URL of the configured mount.
func (c *Config) StreamURL() string {
	return fmt.Sprintf("http://%s:%s%s", c.Icecast.Host, c.Icecast.Port, c.Icecast.MountPoint)
}

func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalMS) * time.Millisecond
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Icecast.TimeoutMS) * time.Millisecond
}

func (c *Config) DurationEstimate() time.Duration {
	return time.Duration(c.Sync.DurationEstimateSeconds) * time.Second
}

func (c *Config) CurrentTrackTTL() time.Duration {
	return time.Duration(c.Cache.CurrentTrackTTLMS) * time.Millisecond
}

func (c *Config) StreamStatusTTL() time.Duration {
	return time.Duration(c.Cache.StreamStatusTTLMS) * time.Millisecond
}

func (c *Config) DocumentTTL() time.Duration {
	return time.Duration(c.Cache.DocumentTTLMS) * time.Millisecond
}

func (c *Config) LiveInterval() time.Duration {
	return time.Duration(c.Server.LiveIntervalMS) * time.Millisecond
}

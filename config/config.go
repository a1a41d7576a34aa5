// Package config loads server settings from defaults, an optional YAML
// file and WORDROOM_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/lexicon"
)

// Config holds application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Game       game.Settings    `mapstructure:"game"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DictionaryConfig configures the word gate. An empty RemoteURL turns
// the remote oracle off.
type DictionaryConfig struct {
	RemoteURL     string        `mapstructure:"remote_url"`
	RemoteTimeout time.Duration `mapstructure:"remote_timeout"`
	Attempts      uint          `mapstructure:"attempts"`
	CacheSize     int           `mapstructure:"cache_size"`
	WordlistPath  string        `mapstructure:"wordlist_path"`
}

type NATSConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix"`
}

// StoreConfig configures the result log. An empty Path disables it.
type StoreConfig struct {
	Path      string `mapstructure:"path"`
	QueueSize int    `mapstructure:"queue_size"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8087",
			ShutdownTimeout: 20 * time.Second,
		},
		Game: game.DefaultSettings(),
		Dictionary: DictionaryConfig{
			RemoteURL:     "https://api.datamuse.com/words",
			RemoteTimeout: 2 * time.Second,
			Attempts:      3,
			CacheSize:     4096,
		},
		NATS:  NATSConfig{Prefix: "wordroom"},
		Store: StoreConfig{QueueSize: 256},
		Log:   LogConfig{Level: "info", Console: true},
	}
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("server.allowed_origins", c.Server.AllowedOrigins)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("game.mode", string(c.Game.Mode))
	v.SetDefault("game.max_players", c.Game.MaxPlayers)
	v.SetDefault("game.turn_duration", c.Game.TurnDuration)
	v.SetDefault("game.warning_before", c.Game.WarningBefore)
	v.SetDefault("game.challenge_window", c.Game.ChallengeWindow)
	v.SetDefault("game.challenge_penalty", c.Game.ChallengePenalty)
	v.SetDefault("game.variant", string(c.Game.Variant))
	v.SetDefault("dictionary.remote_url", c.Dictionary.RemoteURL)
	v.SetDefault("dictionary.remote_timeout", c.Dictionary.RemoteTimeout)
	v.SetDefault("dictionary.attempts", c.Dictionary.Attempts)
	v.SetDefault("dictionary.cache_size", c.Dictionary.CacheSize)
	v.SetDefault("dictionary.wordlist_path", c.Dictionary.WordlistPath)
	v.SetDefault("nats.url", c.NATS.URL)
	v.SetDefault("nats.prefix", c.NATS.Prefix)
	v.SetDefault("store.path", c.Store.Path)
	v.SetDefault("store.queue_size", c.Store.QueueSize)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.console", c.Log.Console)
}

// Load reads configuration from file and env. The file is WORDROOM_CONFIG
// if set, otherwise ./wordroom.yaml if present. Env var overrides use
// prefix WORDROOM_ with . replaced by _, as in WORDROOM_SERVER_ADDR.
func Load() (Config, error) {
	return LoadFile(os.Getenv("WORDROOM_CONFIG"))
}

// LoadFile is Load with an explicit config file. An empty path looks for
// ./wordroom.yaml and tolerates its absence.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("wordroom")
	}

	v.SetEnvPrefix("WORDROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, c.normalize()
}

func (c *Config) normalize() error {
	variant, err := lexicon.ParseVariant(string(c.Game.Variant))
	if err != nil {
		return fmt.Errorf("game.variant: %w", err)
	}
	c.Game.Variant = variant
	mode, err := game.ParseMode(string(c.Game.Mode))
	if err != nil {
		return fmt.Errorf("game.mode: %w", err)
	}
	c.Game.Mode = mode
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}

// Apply sets the global zerolog level and output.
func (lc LogConfig) Apply(w io.Writer) error {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	if lc.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
	return nil
}

// Gate builds the word gate this configuration describes.
func (dc DictionaryConfig) Gate() (*lexicon.Gate, error) {
	var opts []lexicon.GateOption
	if dc.CacheSize > 0 {
		opts = append(opts, lexicon.WithCacheSize(dc.CacheSize))
	}
	if dc.RemoteURL != "" {
		client := lexicon.NewRemoteClient(dc.RemoteURL, dc.RemoteTimeout, dc.Attempts)
		opts = append(opts, lexicon.WithRemote(client, dc.RemoteTimeout))
	}
	if dc.WordlistPath != "" {
		wl, err := lexicon.LoadWordlistFile(dc.WordlistPath)
		if err != nil {
			return nil, fmt.Errorf("dictionary.wordlist_path: %w", err)
		}
		opts = append(opts, lexicon.WithWordlists(wl))
	}
	return lexicon.NewGate(opts...), nil
}

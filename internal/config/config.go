package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	TMDB       TMDB   `yaml:"tmdb"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host        string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port        string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SnapshotTTL time.Duration `yaml:"snapshot-ttl" env:"REDIS_SNAPSHOT_TTL" env-default:"1h"`
}

// TMDB holds the search collaborator settings. ReadAccessToken may be empty;
// the game then ends every round with an API error instead of refusing to start.
type TMDB struct {
	BaseURL          string        `yaml:"base-url" env:"TMDB_BASE_URL" env-default:"https://api.themoviedb.org/3"`
	ReadAccessToken  string        `yaml:"read-access-token" env:"TMDB_READ_ACCESS_TOKEN"`
	ImageBaseURL     string        `yaml:"image-base-url" env:"TMDB_IMAGE_BASE_URL" env-default:"https://image.tmdb.org/t/p/w200"`
	Timeout          time.Duration `yaml:"timeout" env:"TMDB_TIMEOUT" env-default:"10s"`
	RankByPopularity bool          `yaml:"rank-by-popularity" env:"TMDB_RANK_BY_POPULARITY" env-default:"false"`
}

type Game struct {
	RoundSeconds    int           `yaml:"round-seconds" env:"GAME_ROUND_SECONDS" env-default:"20"`
	TickInterval    time.Duration `yaml:"tick-interval" env:"GAME_TICK_INTERVAL" env-default:"1s"`
	DebounceQuiet   time.Duration `yaml:"debounce-quiet" env:"GAME_DEBOUNCE_QUIET" env-default:"2s"`
	SuggestionLimit int           `yaml:"suggestion-limit" env:"GAME_SUGGESTION_LIMIT" env-default:"5"`
	SessionTimeout  time.Duration `yaml:"session-timeout" env:"GAME_SESSION_TIMEOUT" env-default:"1h"`
	ReapInterval    time.Duration `yaml:"reap-interval" env:"GAME_REAP_INTERVAL" env-default:"1m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Load reads the yaml file at path with environment overrides. A missing file
// falls back to environment variables and defaults only.
func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}

		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

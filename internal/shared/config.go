package shared

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog/log"
)

// Config is read from the environment, optionally seeded from a config
// file named by CONFIG_PATH (yaml/json/env, per cleanenv).
//
// The user service and the booking service have historically lived on
// separate hosts, hence the two base URLs.
type Config struct {
	AppEnv string `yaml:"app_env" env:"APP_ENV" env-default:"prod"`

	UserBase    string `yaml:"user_base" env:"EASYSTAY_USER_BASE" env-default:"http://localhost:3001"`
	BookingBase string `yaml:"booking_base" env:"EASYSTAY_BOOKING_BASE" env-default:"http://localhost:3002"`

	AmapBase string `yaml:"amap_base" env:"AMAP_BASE" env-default:"https://restapi.amap.com/v3"`
	AmapKey  string `yaml:"amap_key" env:"AMAP_KEY"`

	// Empty RedisAddr disables the response cache.
	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPass string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB   int    `yaml:"redis_db" env:"REDIS_DB"`

	// StatePath holds the persisted token and profile. Defaults to
	// ~/.easystay/state.json when unset.
	StatePath string `yaml:"state_path" env:"EASYSTAY_STATE"`

	// DebugAddr serves /healthz, /metrics and /v1/session when set.
	DebugAddr string `yaml:"debug_addr" env:"DEBUG_ADDR"`

	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"10s"`
	RequestRPS      int           `yaml:"request_rps" env:"REQUEST_RPS" env-default:"5"`
	PageSize        int           `yaml:"page_size" env:"PAGE_SIZE" env-default:"10"`
	PrefetchWorkers int           `yaml:"prefetch_workers" env:"PREFETCH_WORKERS" env-default:"8"`
	CacheTTL        time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"15m"`
}

func Load() (Config, error) {
	var c Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &c); err != nil {
			return Config{}, err
		}
	} else if err := cleanenv.ReadEnv(&c); err != nil {
		return Config{}, err
	}
	if c.StatePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.StatePath = filepath.Join(home, ".easystay", "state.json")
	}
	if c.AmapKey == "" {
		log.Warn().Msg("AMAP_KEY is empty; regeo will be unavailable")
	}
	return c, nil
}

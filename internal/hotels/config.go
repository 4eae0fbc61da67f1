package hotels

import (
	"time"

	"groupstay/pkg/config"
)

// Config holds the credentials of the hotel search provider.
type Config struct {
	APIURL   string        `env:"TBO_API_URL"`
	Username string        `env:"TBO_USERNAME"`
	Password string        `env:"TBO_PASSWORD"`
	Timeout  time.Duration `env:"TBO_TIMEOUT" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Enabled() bool {
	return c.APIURL != ""
}

package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Username string `envconfig:"E2E_USERNAME" default:"alice"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_BYE_GRACE_DELAY keeps the disconnect sequence short in tests
	ByeGraceDelay time.Duration `envconfig:"E2E_BYE_GRACE_DELAY" default:"50ms"`
	// E2E_TIMEOUT bounds every wait on the session
	Timeout time.Duration `envconfig:"E2E_TIMEOUT" default:"3s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

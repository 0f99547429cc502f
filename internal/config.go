package internal

import (
	"chat-client/domain"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Config struct {
	ServerAddress      string        `env:"CHAT_SERVER_ADDR,default=localhost:6666" validate:"required,hostname_port"`
	Username           string        `env:"CHAT_USERNAME"`
	LogLevel           string        `env:"LOG_LEVEL,required=true" validate:"required"`
	ByeGraceDelay      time.Duration `env:"BYE_GRACE_DELAY,default=1s" validate:"gte=0"`
	OutboundBufferSize int           `env:"OUTBOUND_BUFFER_SIZE,default=64" validate:"gt=0"`
	PreferencesPath    string        `env:"PREFERENCES_PATH"`
	Colours            bool          `env:"COLOURS,default=true"`
	SortCriteria       string        `env:"SORT_CRITERIA"`
}

// Validate checks field constraints, the username when one is set and the
// sort criteria syntax.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Username != "" {
		if err := domain.ValidateUsername(c.Username); err != nil {
			return err
		}
	}
	if _, err := c.Criteria(); err != nil {
		return err
	}
	return nil
}

// Criteria parses SortCriteria; nil means no override.
func (c Config) Criteria() ([]domain.Criterion, error) {
	if c.SortCriteria == "" {
		return nil, nil
	}
	return domain.ParseCriteria(c.SortCriteria)
}

package scaling

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// scaleInRatio is where target tracking places its low alarm relative to the target.
const scaleInRatio = 0.9

// Settings bound the provisioned concurrency pool.
type Settings struct {
	MinCapacity       int           `validate:"gte=0"`
	MaxCapacity       int           `validate:"gte=1,gtefield=MinCapacity"`
	TargetUtilization float64       `validate:"gt=0,lte=1"`
	ScaleInCooldown   time.Duration `validate:"gte=0"`
	ScaleOutCooldown  time.Duration `validate:"gte=0"`
}

// DefaultSettings returns the pool used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MinCapacity:       1,
		MaxCapacity:       10,
		TargetUtilization: 0.8,
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid scaling settings: %w", err)
	}
	return nil
}

// ScaleInThreshold is the utilization below which the pool shrinks.
func (s Settings) ScaleInThreshold() float64 {
	return s.TargetUtilization * scaleInRatio
}

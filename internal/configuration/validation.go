package configuration

import (
	"errors"
	"fmt"

	"github.com/veloflow/cruisectl/internal/ui"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	if config.Cid == 0 {
		return errors.New("cid: a bus session identifier is required")
	}
	if config.Freq == 0 {
		return errors.New("freq: a positive tick frequency (Hz) is required")
	}

	if config.ILimit.IsSet() && config.ILimit.Get() < 0 {
		return fmt.Errorf("i-limit: must not be negative, got %v", config.ILimit.Get())
	}
	if config.OutputLimitMin.IsSet() && config.OutputLimitMax.IsSet() &&
		config.OutputLimitMin.Get() > config.OutputLimitMax.Get() {
		return fmt.Errorf("output-limit-min (%v) must not exceed output-limit-max (%v)",
			config.OutputLimitMin.Get(), config.OutputLimitMax.Get())
	}

	if config.ILimit.IsSet() && !config.I.IsSet() {
		ui.Warning("i-limit is configured but has no effect without i")
	}

	return nil
}

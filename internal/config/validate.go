package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate checks the structural validity of a Config. All problems are
// reported at once via errors.Join so a broken file is fixed in one pass.
// Validate assumes defaults have already been applied (see WithDefaults).
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if _, _, err := net.SplitHostPort(cfg.Gateway.Listen); err != nil {
		errs = append(errs, fmt.Errorf("config: gateway.listen %q: %w", cfg.Gateway.Listen, err))
	}

	switch cfg.Store.Driver {
	case "sqlite", "memory":
	default:
		errs = append(errs, fmt.Errorf("config: store.driver %q (supported: sqlite, memory)", cfg.Store.Driver))
	}

	if t := cfg.Dedup.Threshold; t <= 0 || t >= 1 {
		errs = append(errs, fmt.Errorf("config: dedup.threshold %v must be in (0, 1)", t))
	}
	if cfg.Dedup.Window <= 0 {
		errs = append(errs, errors.New("config: dedup.window must be positive"))
	}

	if h := cfg.Schedule.DefaultHour; h < 0 || h > 23 {
		errs = append(errs, fmt.Errorf("config: schedule.default_hour %d must be in 0..23", h))
	}

	if cfg.Retention.Window <= 0 {
		errs = append(errs, errors.New("config: retention.window must be positive"))
	}
	if cfg.Retention.Window < cfg.Dedup.Window {
		// Pruning inside the dedup window would blind the guard.
		errs = append(errs, fmt.Errorf("config: retention.window %v is shorter than dedup.window %v",
			cfg.Retention.Window, cfg.Dedup.Window))
	}

	return errors.Join(errs...)
}

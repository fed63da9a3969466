package cmd

import (
	"fmt"
	"strings"

	awesomepages "github.com/goliatone/go-awesome-pages"
)

// buildModule layers defaults, environment overrides and the logging flags
// into a configured module.
func buildModule(flags *globalFlags, opts ...awesomepages.Option) (*awesomepages.Module, error) {
	cfg := awesomepages.DefaultConfig()
	cfg.ApplyEnv(nil)

	if flags != nil {
		if v := strings.TrimSpace(flags.logProvider); v != "" {
			cfg.Logging.Provider = v
		}
		if v := strings.TrimSpace(flags.logLevel); v != "" {
			cfg.Logging.Level = v
		}
		if v := strings.TrimSpace(flags.logFormat); v != "" {
			cfg.Logging.Format = v
		}
	}

	module, err := awesomepages.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialise awesome-pages: %w", err)
	}
	return module, nil
}

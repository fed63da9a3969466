package awesomepages_test

import (
	"errors"
	"testing"

	awesomepages "github.com/goliatone/go-awesome-pages"
)

func TestConfigValidateRejectsUnknownProvider(t *testing.T) {
	cfg := awesomepages.DefaultConfig()
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, awesomepages.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidateConcurrencyBounds(t *testing.T) {
	cfg := awesomepages.DefaultConfig()
	cfg.Runner.Concurrency = 500

	if err := cfg.Validate(); !errors.Is(err, awesomepages.ErrRunnerConcurrencyInvalid) {
		t.Fatalf("expected ErrRunnerConcurrencyInvalid, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := awesomepages.DefaultConfig()
	cfg.Language.MinConfidence = -0.1

	if _, err := awesomepages.New(cfg); !errors.Is(err, awesomepages.ErrLanguageConfidenceInvalid) {
		t.Fatalf("expected ErrLanguageConfidenceInvalid, got %v", err)
	}
}

func TestDefaultConfigMatchesDefaults(t *testing.T) {
	cfg := awesomepages.DefaultConfig()
	if cfg.Sources.UserAgent != "awesome-pages-parser" {
		t.Fatalf("unexpected user agent %q", cfg.Sources.UserAgent)
	}
	if cfg.Index.TitleWeight != 2 || cfg.Index.DescriptionWeight != 1 || cfg.Index.TagsWeight != 1.5 {
		t.Fatalf("unexpected index weights %+v", cfg.Index)
	}
}

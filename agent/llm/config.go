package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	openrouterx "github.com/tanpawarit/vapi-caller/pkg/openrouter"
)

// Config is loaded with the EXTRACTOR prefix. Model-assisted extraction is off
// unless Enabled is set.
type Config struct {
	Enabled    bool          `envconfig:"ENABLED" split_words:"true" default:"false"`
	BaseURL    string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey     string        `envconfig:"API_KEY" split_words:"true"`
	Model      string        `envconfig:"MODEL" split_words:"true"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL    string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName   string        `envconfig:"SITE_NAME" split_words:"true"`
	KnownNames []string      `envconfig:"KNOWN_NAMES" split_words:"true" default:"Johnny"`
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: extractor api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: extractor model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouter() openrouterx.Config {
	return openrouterx.Config{
		BaseURL:  strings.TrimSpace(c.BaseURL),
		APIKey:   strings.TrimSpace(c.APIKey),
		Timeout:  c.Timeout,
		SiteURL:  strings.TrimSpace(c.SiteURL),
		SiteName: strings.TrimSpace(c.SiteName),
	}
}

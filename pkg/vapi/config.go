package vapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

const (
	DefaultBaseURL       = "https://api.vapi.ai"
	DefaultAssistantID   = "2c9b265d-0171-4017-8e95-2a6679ee37ec"
	DefaultPhoneNumberID = "8f4de0bc-a662-4095-8da2-86f238c438b2"
)

// Config is loaded with the VAPI prefix, e.g. VAPI_API_KEY.
type Config struct {
	APIKey        string        `envconfig:"API_KEY" split_words:"true"`
	BaseURL       string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.vapi.ai"`
	AssistantID   string        `envconfig:"ASSISTANT_ID" split_words:"true" default:"2c9b265d-0171-4017-8e95-2a6679ee37ec"`
	PhoneNumberID string        `envconfig:"PHONE_NUMBER_ID" split_words:"true" default:"8f4de0bc-a662-4095-8da2-86f238c438b2"`
	VoiceProvider string        `envconfig:"VOICE_PROVIDER" split_words:"true" default:"openai"`
	Timeout       time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Validate checks the credential first so a missing key is reported before anything else.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return contractx.ErrMissingCredential
	}
	if err := ValidateID("assistant id", c.AssistantID); err != nil {
		return err
	}
	if err := ValidateID("phone number id", c.PhoneNumberID); err != nil {
		return err
	}
	return nil
}

// ValidateID checks that a platform identifier is a UUID.
func ValidateID(field, value string) error {
	if _, err := uuid.Parse(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s %q is not a valid id", contractx.ErrValidation, field, value)
	}
	return nil
}

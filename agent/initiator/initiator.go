package initiator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

const defaultVoiceProvider = "openai"

var stripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// Normalize converts a raw destination into E.164. Numbers without a leading "+"
// are assumed to be North American: leading 1s are dropped and "+1" is prepended.
func Normalize(destination string) string {
	number := stripper.Replace(destination)
	if strings.HasPrefix(number, "+") {
		return number
	}
	return "+1" + strings.TrimLeft(number, "1")
}

type Options struct {
	AssistantID   string
	PhoneNumberID string
	Voice         string
	VoiceProvider string
}

// BuildRequest normalizes the destination and attaches the optional voice override.
func BuildRequest(destination, goal string, opts Options) (contractx.CallRequest, error) {
	number := Normalize(destination)
	if !hasSubscriberDigits(number) {
		return contractx.CallRequest{}, fmt.Errorf("%w: destination %q has no phone number", contractx.ErrValidation, destination)
	}
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return contractx.CallRequest{}, fmt.Errorf("%w: goal is empty", contractx.ErrValidation)
	}

	req := contractx.CallRequest{
		Destination:   number,
		Goal:          goal,
		AssistantID:   strings.TrimSpace(opts.AssistantID),
		PhoneNumberID: strings.TrimSpace(opts.PhoneNumberID),
	}

	if voice := strings.TrimSpace(opts.Voice); voice != "" {
		provider := strings.TrimSpace(opts.VoiceProvider)
		if provider == "" {
			provider = defaultVoiceProvider
		}
		req.Voice = &contractx.VoiceOverride{Provider: provider, VoiceID: voice}
	}
	return req, nil
}

// Initiate submits the request exactly once and returns the platform's call handle.
func Initiate(ctx context.Context, transport contractx.Transport, req contractx.CallRequest) (contractx.CallHandle, error) {
	if transport == nil {
		return "", errors.New("transport is required")
	}
	handle, err := transport.CreateCall(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(handle)) == "" {
		return "", fmt.Errorf("%w: platform returned an empty call id", contractx.ErrTransport)
	}
	return handle, nil
}

// hasSubscriberDigits rejects numbers that normalize to a bare "+" or "+1".
func hasSubscriberDigits(number string) bool {
	rest := strings.TrimPrefix(number, "+")
	if rest == "" || rest == "1" {
		return false
	}
	return strings.ContainsAny(rest, "0123456789")
}

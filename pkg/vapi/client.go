package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

const maxResponseSizeBytes = 8 << 20

var _ contractx.Transport = (*Client)(nil)

// ClientOption customizes Client.
type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client talks to the Vapi REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, contractx.ErrMissingCredential
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid vapi base url: %v", contractx.ErrValidation, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type createCallPayload struct {
	AssistantID        string             `json:"assistantId"`
	PhoneNumberID      string             `json:"phoneNumberId"`
	Customer           customer           `json:"customer"`
	AssistantOverrides assistantOverrides `json:"assistantOverrides"`
}

type customer struct {
	Number string `json:"number"`
}

type assistantOverrides struct {
	VariableValues map[string]string        `json:"variableValues"`
	Voice          *contractx.VoiceOverride `json:"voice,omitempty"`
}

type createCallResponse struct {
	ID string `json:"id"`
}

func newCreateCallPayload(req contractx.CallRequest) createCallPayload {
	return createCallPayload{
		AssistantID:   req.AssistantID,
		PhoneNumberID: req.PhoneNumberID,
		Customer:      customer{Number: req.Destination},
		AssistantOverrides: assistantOverrides{
			VariableValues: map[string]string{"call_goal": req.Goal},
			Voice:          req.Voice,
		},
	}
}

// CreateCall submits an outbound call. It is never retried here: call creation is not idempotent.
func (c *Client) CreateCall(ctx context.Context, req contractx.CallRequest) (contractx.CallHandle, error) {
	const op = "create call"

	body, err := json.Marshal(newCreateCallPayload(req))
	if err != nil {
		return "", fmt.Errorf("marshal call request: %w", err)
	}

	raw, err := c.do(ctx, op, http.MethodPost, "/call", body)
	if err != nil {
		return "", err
	}

	var parsed createCallResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &contractx.TransportError{Op: op, Body: string(raw), Err: fmt.Errorf("decode response: %w", err)}
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", &contractx.TransportError{Op: op, Body: string(raw), Err: errors.New("response has no call id")}
	}
	return contractx.CallHandle(parsed.ID), nil
}

// GetCall fetches the current state of a call, including transcript and artifacts.
func (c *Client) GetCall(ctx context.Context, handle contractx.CallHandle) (*contractx.CallSnapshot, error) {
	const op = "get call"

	id := strings.TrimSpace(string(handle))
	if id == "" {
		return nil, fmt.Errorf("%w: call id is empty", contractx.ErrValidation)
	}

	raw, err := c.do(ctx, op, http.MethodGet, "/call/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	snap, err := contractx.DecodeSnapshot(raw)
	if err != nil {
		return nil, &contractx.TransportError{Op: op, Body: string(raw), Err: fmt.Errorf("decode response: %w", err)}
	}
	return snap, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &contractx.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, &contractx.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &contractx.TransportError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

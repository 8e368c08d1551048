// Package rest implements the external collaborator interfaces over their REST
// APIs: the read-only product catalog and the order submission endpoint.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vaporhouse/api/internal/platform/auth"
)

const maxResponseBytes = 4 << 20

// Doer abstracts *http.Client so tests can intercept outbound requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures a REST collaborator client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient Doer
}

type client struct {
	baseURL string
	http    Doer
}

func newClient(cfg ClientConfig) (*client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("rest: base url is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}

	return &client{baseURL: base, http: doer}, nil
}

// do performs the request and decodes a 2xx JSON response into dest.
// The bearer credential on the context, when present, is forwarded.
func (c *client) do(ctx context.Context, method, path string, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("rest: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := auth.BearerTokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apiError{message: fmt.Sprintf("rest: %s %s: %v", method, path, err), unavailable: true}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &apiError{message: fmt.Sprintf("rest: read response: %v", err), unavailable: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, raw)
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &apiError{message: fmt.Sprintf("rest: decode response: %v", err), unavailable: true}
	}
	return nil
}

// apiError satisfies repositories.RepositoryError so services can classify
// collaborator failures without knowing about HTTP.
type apiError struct {
	message     string
	status      int
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *apiError) Error() string       { return e.message }
func (e *apiError) IsNotFound() bool    { return e.notFound }
func (e *apiError) IsConflict() bool    { return e.conflict }
func (e *apiError) IsUnavailable() bool { return e.unavailable }

func classifyStatus(status int, body []byte) error {
	message := remoteMessage(body)
	if message == "" {
		message = http.StatusText(status)
	}
	err := &apiError{
		message: fmt.Sprintf("rest: remote returned %d: %s", status, message),
		status:  status,
	}
	switch {
	case status == http.StatusNotFound:
		err.notFound = true
	case status == http.StatusConflict:
		err.conflict = true
	case status >= 500 || status == http.StatusTooManyRequests:
		err.unavailable = true
	}
	return err
}

func remoteMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if strings.TrimSpace(envelope.Message) != "" {
		return strings.TrimSpace(envelope.Message)
	}
	return strings.TrimSpace(envelope.Error)
}

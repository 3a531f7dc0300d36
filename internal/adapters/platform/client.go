// Package platform implements the portal adapters: one client per supported
// job board, all speaking the fixed capability contract the engine expects.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// ErrSessionInvalid is returned by CheckSession when the portal no longer
// accepts the configured credentials.
var ErrSessionInvalid = errors.New("portal session invalid")

// restClient is the shared HTTP plumbing for portal adapters: request
// shaping, auth header injection, and failure classification.
type restClient struct {
	platform   model.Platform
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

// restClientOptions configure a restClient.
type restClientOptions struct {
	Platform  model.Platform
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
	Logger    *slog.Logger
}

func newRESTClient(opts restClientOptions) *restClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "platform_client", "platform", opts.Platform)
	}

	return &restClient{
		platform:   opts.Platform,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		authToken:  opts.AuthToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// doJSON performs one request and decodes the response body into out.
// Non-2xx statuses are classified into the submit failure taxonomy.
func (c *restClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("portal request %s %s: %w", method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return c.classify(resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode portal response: %w", err)
	}
	return nil
}

// classify maps a portal error response onto the engine's failure taxonomy.
func (c *restClient) classify(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}

	kind := core.SubmitUnknown
	switch {
	case status == http.StatusTooManyRequests:
		kind = core.SubmitRateLimited
	case status == http.StatusUnauthorized:
		kind = core.SubmitSessionExpired
	case status == http.StatusForbidden && looksLikeCaptcha(msg):
		kind = core.SubmitCaptchaRequired
	case status == http.StatusForbidden:
		kind = core.SubmitSessionExpired
	case status == http.StatusUnprocessableEntity:
		kind = core.SubmitRejected
	case status >= 500:
		kind = core.SubmitUnknown
	case status == http.StatusNotFound:
		kind = core.SubmitRejected
	}

	if c.logger != nil {
		c.logger.Debug("portal error classified", "status", status, "kind", kind)
	}
	return &core.SubmitError{
		Kind:     kind,
		Platform: string(c.platform),
		Message:  fmt.Sprintf("status %d: %s", status, msg),
	}
}

func looksLikeCaptcha(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "captcha") || strings.Contains(lower, "challenge")
}

var locationTitler = cases.Title(language.English)

// normalizeLocation canonicalizes portal-provided location strings: NFC
// normalization, collapsed whitespace, title case. Two portals spelling the
// same city differently then agree on one stored form.
func normalizeLocation(raw string) string {
	s := norm.NFC.String(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = locationTitler.String(strings.ToLower(strings.Join(strings.Fields(p), " ")))
	}
	return strings.Join(parts, ", ")
}

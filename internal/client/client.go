// Package client speaks to the invitation backend. One Client instance is
// one SDK session: it owns the session id, the attestation token echoed
// back to the server, and the dispatch throttle for invitation creation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/loopwell/invitekit/internal/logger"
	"github.com/loopwell/invitekit/pkg/apierrors"
)

const (
	headerAuthorization      = "Authorization"
	headerSessionID          = "X-Session-ID"
	headerClientName         = "X-Client-Name"
	headerClientVersion      = "X-Client-Version"
	headerSessionAttestation = "X-Session-Attestation"

	defaultTimeout = 30 * time.Second
	defaultBackoff = 250 * time.Millisecond
	maxRetries     = 2
	maxBodyBytes   = 4 << 20
)

// Doer abstracts the HTTP transport so tests can substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config carries everything a Client needs. Hosts typically build one from
// their settings; tests build one pointing at a local server.
type Config struct {
	BaseURL       string
	APIKey        string
	ClientName    string
	ClientVersion string
	Timeout       time.Duration
	SendRate      float64
	SendBurst     int
	RetryBackoff  time.Duration
	HTTPClient    Doer
	Logger        *logger.Logger
}

// Client is the backend API client. Safe for concurrent use.
type Client struct {
	http          Doer
	baseURL       string
	apiKey        string
	clientName    string
	clientVersion string
	sessionID     string
	backoff       time.Duration
	limiter       *rate.Limiter
	log           *logger.Logger

	attestation atomicString
}

// New builds a client. Zero-value knobs get defaults; the session id is
// minted here and lives as long as the client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	sendRate := cfg.SendRate
	if sendRate <= 0 {
		sendRate = 4
	}
	sendBurst := cfg.SendBurst
	if sendBurst < 1 {
		sendBurst = 1
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	name := cfg.ClientName
	if name == "" {
		name = "invitekit-go"
	}
	version := cfg.ClientVersion
	if version == "" {
		version = "dev"
	}

	return &Client{
		http:          httpClient,
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		clientName:    name,
		clientVersion: version,
		sessionID:     uuid.New().String(),
		backoff:       backoff,
		limiter:       rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		log:           cfg.Logger,
	}
}

// SessionID returns the id stamped on every request from this client.
func (c *Client) SessionID() string {
	return c.sessionID
}

type requestSpec struct {
	op        string
	method    string
	path      string
	query     url.Values
	body      any
	retryable bool
}

// do runs one request spec and returns the raw response body. Retryable
// requests are retried on transport errors and 5xx responses with a linear
// backoff; anything carrying a body never retries.
func (c *Client) do(ctx context.Context, spec requestSpec) ([]byte, error) {
	if c.apiKey == "" {
		return nil, apierrors.NewMissingCredentialError(spec.op)
	}

	var bodyBytes []byte
	if spec.body != nil {
		encoded, err := json.Marshal(spec.body)
		if err != nil {
			return nil, apierrors.NewEncodingError(spec.op, err)
		}
		bodyBytes = encoded
	}

	attempts := 1
	if spec.retryable {
		attempts += maxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, time.Duration(attempt-1)*c.backoff); err != nil {
				return nil, apierrors.NewTransportError(spec.op, err)
			}
			c.log.WithFields(map[string]any{"op": spec.op, "attempt": attempt}).Debug("retrying request")
		}

		raw, err := c.attempt(ctx, spec, bodyBytes)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !spec.retryable || !apierrors.Retryable(err) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, spec requestSpec, bodyBytes []byte) ([]byte, error) {
	endpoint := c.baseURL + spec.path
	if len(spec.query) > 0 {
		endpoint += "?" + spec.query.Encode()
	}

	var reader io.Reader
	if bodyBytes != nil {
		reader = bytes.NewReader(bodyBytes)
	}
	req, err := http.NewRequestWithContext(ctx, spec.method, endpoint, reader)
	if err != nil {
		return nil, apierrors.NewTransportError(spec.op, err)
	}

	req.Header.Set(headerAuthorization, "Bearer "+c.apiKey)
	req.Header.Set(headerSessionID, c.sessionID)
	req.Header.Set(headerClientName, c.clientName)
	req.Header.Set(headerClientVersion, c.clientVersion)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("%s/%s", c.clientName, c.clientVersion))
	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if attestation := c.attestation.Load(); attestation != "" {
		req.Header.Set(headerSessionAttestation, attestation)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apierrors.NewTransportError(spec.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apierrors.NewTransportError(spec.op, err)
	}

	if echoed := resp.Header.Get(headerSessionAttestation); echoed != "" {
		c.attestation.Store(echoed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierrors.NewHTTPStatusError(spec.op, resp.StatusCode, serverMessage(raw))
	}
	return raw, nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// atomicString guards the attestation token, which arrives on one response
// and is echoed on every later request, possibly from other goroutines.
type atomicString struct {
	mu sync.RWMutex
	v  string
}

func (a *atomicString) Load() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.v
}

func (a *atomicString) Store(s string) {
	a.mu.Lock()
	a.v = s
	a.mu.Unlock()
}

// serverMessage pulls a human-readable message out of an error body when
// the server sent one.
func serverMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return envelope.Message
}

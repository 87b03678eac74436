// Package auth provides Backpack API authentication using ED25519 signatures.
package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the request validity window in milliseconds. The server
// rejects a signed request seen more than this long after its timestamp.
const DefaultWindow = 5000

// Header names of the authentication contract.
const (
	HeaderAPIKey    = "X-Api-Key"
	HeaderTimestamp = "X-Timestamp"
	HeaderWindow    = "X-Window"
	HeaderSignature = "X-Signature"
)

// Credentials holds the ED25519 key pair for signing requests. Immutable
// after construction and safe for concurrent use.
type Credentials struct {
	private   ed25519.PrivateKey
	publicB64 string
	window    int64
	now       func() time.Time
}

// Option configures Credentials.
type Option func(*Credentials)

// WithWindow overrides the request validity window in milliseconds.
func WithWindow(ms int64) Option {
	return func(c *Credentials) {
		if ms > 0 {
			c.window = ms
		}
	}
}

// WithClock overrides the timestamp source. Used by tests to freeze time.
func WithClock(now func() time.Time) Option {
	return func(c *Credentials) {
		c.now = now
	}
}

// NewCredentials builds credentials from the base64-encoded API key (the
// ED25519 public key) and API secret (the 32-byte private seed). The public
// key is re-derived from the seed and checked against apiKey to catch
// mismatched key pairs early.
func NewCredentials(apiKey, apiSecret string, opts ...Option) (*Credentials, error) {
	if apiSecret == "" {
		return nil, fmt.Errorf("API secret is required")
	}

	seed, err := base64.StdEncoding.DecodeString(apiSecret)
	if err != nil {
		return nil, fmt.Errorf("decode API secret: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("API secret must decode to %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	private := ed25519.NewKeyFromSeed(seed)
	publicB64 := base64.StdEncoding.EncodeToString(private.Public().(ed25519.PublicKey))

	if apiKey != "" && apiKey != publicB64 {
		return nil, fmt.Errorf("API key does not match the public key derived from the secret")
	}

	c := &Credentials{
		private:   private,
		publicB64: publicB64,
		window:    DefaultWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PublicKey returns the base64-encoded verifying key sent as X-API-KEY.
func (c *Credentials) PublicKey() string {
	return c.publicB64
}

// Window returns the validity window in milliseconds.
func (c *Credentials) Window() int64 {
	return c.window
}

// Sign generates the authentication headers for one request attempt. The
// timestamp is taken at call time, so retried requests must be re-signed to
// stay within the validity window.
func (c *Credentials) Sign(instruction string, params map[string]string) (http.Header, error) {
	if instruction == "" {
		return nil, fmt.Errorf("instruction is required")
	}

	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	window := strconv.FormatInt(c.window, 10)

	message := canonicalString(instruction, params, timestamp, window)
	signature := ed25519.Sign(c.private, []byte(message))

	h := http.Header{}
	h.Set(HeaderAPIKey, c.publicB64)
	h.Set(HeaderTimestamp, timestamp)
	h.Set(HeaderWindow, window)
	h.Set(HeaderSignature, base64.StdEncoding.EncodeToString(signature))
	h.Set("Content-Type", "application/json")
	return h, nil
}

// canonicalString builds the exact byte string the server verifies:
// instruction first, then the request parameters sorted lexicographically
// by key, then timestamp, then window, all form-encoded. Any deviation from
// this byte string invalidates the signature.
func canonicalString(instruction string, params map[string]string, timestamp, window string) string {
	var b strings.Builder
	b.WriteString("instruction=")
	b.WriteString(url.QueryEscape(instruction))

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}

	b.WriteString("&timestamp=")
	b.WriteString(timestamp)
	b.WriteString("&window=")
	b.WriteString(window)
	return b.String()
}

package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/studiowebux/kwintel/internal/request"
	"github.com/studiowebux/kwintel/internal/types"
)

// MaxResponseSize caps how much of a response body is read
const MaxResponseSize = 10 << 20

// Extractor sends an encoded request to the extraction service
type Extractor interface {
	Extract(ctx context.Context, req *request.Outbound) (*types.ExtractionResult, error)
}

// TLSConfig holds optional TLS/mTLS settings for the service connection
type TLSConfig struct {
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
	CertFile           string `json:"cert_file,omitempty" yaml:"cert_file,omitempty"`
	KeyFile            string `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	CAFile             string `json:"ca_file,omitempty" yaml:"ca_file,omitempty"`
}

// Options configures a Client
type Options struct {
	BaseURL string
	Token   string        // optional bearer token
	Timeout time.Duration // zero leaves the transport default (no overall timeout)
	TLS     *TLSConfig
}

// Client is the HTTP client for the extraction service
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Extractor = (*Client)(nil)

// NewClient creates a service client
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("service base URL is required")
	}

	httpClient, err := buildHTTPClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	return &Client{baseURL: base, http: httpClient}, nil
}

// BaseURL returns the service address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Extract sends the request and decodes the analysis
func (c *Client) Extract(ctx context.Context, out *request.Outbound) (*types.ExtractionResult, error) {
	if out == nil {
		return nil, fmt.Errorf("failed to execute request: nil request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, out.Method, c.baseURL+out.Path, bytes.NewReader(out.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", out.ContentType)
	httpReq.Header.Set("Accept", "application/json")

	status, body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	if !IsSuccessStatus(status) {
		return nil, &ServiceError{Status: status, Message: extractMessage(body)}
	}

	return decodeResult(status, body)
}

// Ping calls the health endpoint and returns the service banner
func (c *Client) Ping(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+request.PathHealth, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	status, body, err := c.do(httpReq)
	if err != nil {
		return "", err
	}
	if !IsSuccessStatus(status) {
		return "", &ServiceError{Status: status, Message: extractMessage(body)}
	}

	var banner struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &banner); err != nil || banner.Message == "" {
		return strings.TrimSpace(string(body)), nil
	}
	return banner.Message, nil
}

func (c *Client) do(httpReq *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// resultEnvelope accepts both a result and the service's in-band error field
type resultEnvelope struct {
	types.ExtractionResult
	Error *string `json:"error"`
}

func decodeResult(status int, body []byte) (*types.ExtractionResult, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return &types.ExtractionResult{}, nil
	}

	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// The service reports some input problems as a 200 with an error field
	if env.Error != nil && strings.TrimSpace(*env.Error) != "" {
		return nil, &ServiceError{Status: status, Message: strings.TrimSpace(*env.Error)}
	}

	result := env.ExtractionResult
	return &result, nil
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS and bearer token
func buildHTTPClient(opts Options) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if opts.TLS != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: opts.TLS.InsecureSkipVerify,
		}

		// Client certificate for mTLS
		if opts.TLS.CertFile != "" && opts.TLS.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(opts.TLS.CertFile, opts.TLS.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		if opts.TLS.CAFile != "" {
			caCert, err := os.ReadFile(opts.TLS.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, errors.New("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	var rt http.RoundTripper = transport
	if opts.Token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"}),
			Base:   transport,
		}
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: rt,
	}, nil
}

// FormatDuration formats a duration as a short human-readable string
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000.0)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

package executor

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// GenericFailureMessage is shown when the service did not supply a message
const GenericFailureMessage = "Error processing request. Make sure backend is running."

// ServiceError is a failure reported by the extraction service
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned status %d", e.Status)
	}
	return fmt.Sprintf("service returned status %d: %s", e.Status, e.Message)
}

// MessageFrom returns the service-supplied message carried by err, or
// GenericFailureMessage. It never returns an empty string.
func MessageFrom(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && strings.TrimSpace(se.Message) != "" {
		return strings.TrimSpace(se.Message)
	}
	return GenericFailureMessage
}

// extractMessage pulls a human-readable message out of an error body.
// Recognised fields, in order: error, detail (string or list of {msg}), message.
func extractMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if msg := rawString(payload["error"]); msg != "" {
		return msg
	}

	if raw, ok := payload["detail"]; ok {
		if msg := rawString(raw); msg != "" {
			return msg
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(raw, &items); err == nil {
			var msgs []string
			for _, item := range items {
				if s := strings.TrimSpace(item.Msg); s != "" {
					msgs = append(msgs, s)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	return rawString(payload["message"])
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Describe turns a transport error into an actionable description for logs and
// the CLI. Service errors are described by their own message.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return MessageFrom(se)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout - the service took too long, try increasing request_timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "Request timeout - the service took too long, try increasing request_timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "Connection timeout - service took too long to respond"
		}
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED:
				return "Connection refused - check if the service is running and the port is correct"
			case syscall.ECONNRESET:
				return "Connection reset by service - it may have crashed or the network dropped"
			case syscall.ENETUNREACH:
				return "Network unreachable - check network connection and firewall settings"
			case syscall.EHOSTUNREACH:
				return "Host unreachable - check if the service host is online"
			}
		}
	}

	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return "TLS certificate signed by unknown authority - set tls.ca_file or tls.insecure_skip_verify"
	}

	return describeString(err.Error())
}

// describeString categorises an error by its text
func describeString(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "connection refused"):
		return "Connection refused - check if the service is running and the port is correct"
	case strings.Contains(errLower, "no such host"),
		strings.Contains(errLower, "dial tcp: lookup"):
		return "DNS resolution failed - verify the service hostname"
	case strings.Contains(errLower, "connection reset"):
		return "Connection reset by service - it may have crashed or the network dropped"
	case strings.Contains(errLower, "x509"),
		strings.Contains(errLower, "certificate"),
		strings.Contains(errLower, "tls"):
		return "TLS error - check certificate configuration: " + errStr
	case strings.Contains(errLower, "unsupported protocol"),
		strings.Contains(errLower, "invalid url"):
		return "Invalid service URL - verify api_url format and protocol (http/https)"
	case strings.Contains(errLower, "eof"):
		return "Connection closed unexpectedly - the service terminated the connection"
	case strings.Contains(errLower, "timeout"),
		strings.Contains(errLower, "timed out"):
		return "Connection timeout - service took too long to respond"
	}

	return "Request failed: " + errStr
}

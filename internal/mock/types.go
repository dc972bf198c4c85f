package mock

import "time"

// Config configures the stand-in extraction service
type Config struct {
	Port    int      `json:"port" yaml:"port"`                         // Server port (default: 8000)
	Host    string   `json:"host" yaml:"host"`                         // Server host (default: localhost)
	Delay   int      `json:"delay,omitempty" yaml:"delay,omitempty"`   // Response delay in milliseconds
	Fail    string   `json:"fail,omitempty" yaml:"fail,omitempty"`     // When set, every analysis fails with this detail
	Status  int      `json:"status,omitempty" yaml:"status,omitempty"` // Status used with Fail (default: 500)
	Labels  []string `json:"labels,omitempty" yaml:"labels,omitempty"` // Candidate topic labels
	Logging bool     `json:"logging" yaml:"logging"`                   // Enable request logging
}

// RequestLog is one request seen by the server
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Bytes     int           `json:"bytes"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
}

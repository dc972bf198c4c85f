// Package mock runs a local stand-in for the extraction service.
//
// It speaks the same endpoints as the real service and answers with a
// deterministic frequency-based analysis, so the client can be exercised
// without the model stack.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/studiowebux/kwintel/internal/document"
	"github.com/studiowebux/kwintel/internal/request"
	"github.com/studiowebux/kwintel/internal/types"
)

// Banner is returned by the health endpoint
const Banner = "Keyword Intelligence API is running"

const (
	maxUploadSize = 32 << 20
	maxLogs       = 1000
)

// Server is the stand-in HTTP server
type Server struct {
	config     *Config
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	logs       []RequestLog
	logsMutex  sync.RWMutex
	notifyCh   chan struct{} // Signalled when a new log arrives
}

// NewServer creates a stand-in server
func NewServer(config *Config, logger *slog.Logger) *Server {
	config.applyDefaults()
	return &Server{
		config:   config,
		logger:   logger,
		notifyCh: make(chan struct{}, 100),
	}
}

// Handler returns the HTTP handler serving the service endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+request.PathHealth+"{$}", s.wrap(s.handleHealth))
	mux.HandleFunc("POST "+request.PathExtract, s.wrap(s.handleExtract))
	mux.HandleFunc("POST "+request.PathExtractPDF, s.wrap(s.handleExtractPDF))
	return mux
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("stand-in server stopped", "err", err)
		}
	}()

	return nil
}

// Stop shuts the server down
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the base URL of a started server
func (s *Server) Address() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port)))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// wrap applies the configured delay and records the request
func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if s.config.Delay > 0 {
			select {
			case <-time.After(time.Duration(s.config.Delay) * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)

		entry := RequestLog{
			Timestamp: start,
			Method:    r.Method,
			Path:      r.URL.Path,
			Bytes:     int(r.ContentLength),
			Status:    sw.status,
			Duration:  time.Since(start),
		}
		s.logger.Debug("request", "method", entry.Method, "path", entry.Path, "status", entry.Status, "duration", entry.Duration)
		if s.config.Logging {
			s.logRequest(entry)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": Banner})
}

type extractPayload struct {
	Text  *string `json:"text"`
	TopN  *int    `json:"top_n"`
	NgMin *int    `json:"ng_min"`
	NgMax *int    `json:"ng_max"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var payload extractPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&payload); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "body", "Input should be a valid JSON object")
		return
	}

	text := ""
	if payload.Text != nil {
		text = *payload.Text
	}
	s.respond(w, text, paramsFrom(payload.TopN, payload.NgMin, payload.NgMax))
}

func (s *Server) handleExtractPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, request.FieldFile, "Field required")
		return
	}

	file, _, err := r.FormFile(request.FieldFile)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, request.FieldFile, "Field required")
		return
	}
	defer file.Close()

	blob, err := document.ReadAll(file, maxUploadSize)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"detail": err.Error()})
		return
	}

	text, err := document.Text(blob)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}

	topN, ok1 := formInt(r, request.FieldTopN)
	ngMin, ok2 := formInt(r, request.FieldNgramMin)
	ngMax, ok3 := formInt(r, request.FieldNgramMax)
	if !ok1 || !ok2 || !ok3 {
		writeDetail(w, http.StatusUnprocessableEntity, "form", "Input should be a valid integer")
		return
	}

	s.respond(w, text, paramsFrom(topN, ngMin, ngMax))
}

func (s *Server) respond(w http.ResponseWriter, text string, p types.Params) {
	if strings.TrimSpace(text) == "" {
		writeJSON(w, http.StatusOK, map[string]string{"error": "No text provided"})
		return
	}

	if s.config.Fail != "" {
		writeJSON(w, s.config.Status, map[string]string{"detail": s.config.Fail})
		return
	}

	writeJSON(w, http.StatusOK, Analyze(text, p, s.config.Labels))
}

func paramsFrom(topN, ngMin, ngMax *int) types.Params {
	p := types.DefaultParams()
	if topN != nil {
		p.TopN = *topN
	}
	if ngMin != nil {
		p.NgramMin = *ngMin
	}
	if ngMax != nil {
		p.NgramMax = *ngMax
	}
	return p
}

// formInt reads an optional integer form field
func formInt(r *http.Request, name string) (*int, bool) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, loc, msg string) {
	writeJSON(w, status, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body", loc}, "msg": msg}},
	})
}

// logRequest adds a request to the log
func (s *Server) logRequest(entry RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel returns the channel signalled on new log entries
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// Logs returns a copy of the logged requests
func (s *Server) Logs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()
	s.logs = nil
}

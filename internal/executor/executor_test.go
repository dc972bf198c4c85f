package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/kwintel/internal/request"
	"github.com/studiowebux/kwintel/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...func(*Options)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	o := Options{BaseURL: srv.URL + "/"}
	for _, fn := range opts {
		fn(&o)
	}
	c, err := NewClient(o)
	require.NoError(t, err)
	return c
}

func textRequest(t *testing.T) *request.Outbound {
	t.Helper()
	out, err := request.Build(types.NewTextInput("Some text long enough to analyse.", types.DefaultParams()))
	require.NoError(t, err)
	return out
}

func TestClient_ExtractSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"top_n":10`)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"rule_keywords":["search","learning"],"ml_keywords":["machine learning"],
			"phrases":["machine learning"],"summary":"A summary.","topic":["technology","business"]}`)
	})

	res, err := c.Extract(context.Background(), textRequest(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"search", "learning"}, res.RuleKeywords)
	assert.Equal(t, []string{"machine learning"}, res.MLKeywords)
	assert.Equal(t, "A summary.", res.Summary)
	assert.Equal(t, "technology", res.PredictedTopic())
}

func TestClient_ExtractToleratesMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ml_keywords":["only"],"summary":null}`)
	})

	res, err := c.Extract(context.Background(), textRequest(t))
	require.NoError(t, err)
	assert.Nil(t, res.RuleKeywords)
	assert.Equal(t, []string{"only"}, res.MLKeywords)
	assert.Equal(t, "", res.Summary)
	assert.Equal(t, "", res.PredictedTopic())
}

func TestClient_ExtractInBandError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"No text provided"}`)
	})

	_, err := c.Extract(context.Background(), textRequest(t))
	require.Error(t, err)
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusOK, se.Status)
	assert.Equal(t, "No text provided", MessageFrom(err))
}

func TestClient_ExtractHTTPErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"detail string", http.StatusInternalServerError, `{"detail":"Model not loaded"}`, "Model not loaded"},
		{"detail list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","file"],"msg":"field required"}]}`, "field required"},
		{"message field", http.StatusBadGateway, `{"message":"upstream down"}`, "upstream down"},
		{"plain text body", http.StatusInternalServerError, `Internal Server Error`, GenericFailureMessage},
		{"empty body", http.StatusServiceUnavailable, ``, GenericFailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := c.Extract(context.Background(), textRequest(t))
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, MessageFrom(err))
		})
	}
}

func TestClient_ExtractMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract_pdf", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "10", r.FormValue("top_n"))
		_, fh, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "paper.pdf", fh.Filename)
		fmt.Fprint(w, `{"rule_keywords":["pdf"]}`)
	})

	out, err := request.Build(types.NewFileInput([]byte("%PDF"), "paper.pdf", types.DefaultParams()))
	require.NoError(t, err)

	res, err := c.Extract(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"pdf"}, res.RuleKeywords)
}

func TestClient_BearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{}`)
	}, func(o *Options) { o.Token = "secret-token" })

	_, err := c.Extract(context.Background(), textRequest(t))
	require.NoError(t, err)
}

func TestClient_TransportErrorFallsBackToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Options{BaseURL: url})
	require.NoError(t, err)

	_, err = c.Extract(context.Background(), textRequest(t))
	require.Error(t, err)
	assert.Equal(t, GenericFailureMessage, MessageFrom(err))
	assert.True(t, strings.HasPrefix(Describe(err), "Connection refused"), Describe(err))
}

func TestClient_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{}`)
	}, func(o *Options) { o.Timeout = 20 * time.Millisecond })

	_, err := c.Extract(context.Background(), textRequest(t))
	require.Error(t, err)
	assert.Contains(t, Describe(err), "timeout")
}

func TestClient_Ping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		fmt.Fprint(w, `{"message":"Keyword Intelligence API is running"}`)
	})

	banner, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Keyword Intelligence API is running", banner)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "  "})
	assert.Error(t, err)
}

func TestMessageFrom(t *testing.T) {
	assert.Equal(t, GenericFailureMessage, MessageFrom(nil))
	assert.Equal(t, GenericFailureMessage, MessageFrom(errors.New("boom")))
	assert.Equal(t, GenericFailureMessage, MessageFrom(&ServiceError{Status: 500, Message: "  "}))
	assert.Equal(t, "bad file", MessageFrom(fmt.Errorf("wrapped: %w", &ServiceError{Status: 400, Message: "bad file"})))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, "Request timeout - the service took too long, try increasing request_timeout"},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), "Request cancelled"},
		{"dns", errors.New("dial tcp: lookup nowhere.invalid: no such host"), "DNS resolution failed - verify the service hostname"},
		{"bad scheme", errors.New(`unsupported protocol scheme "ftp"`), "Invalid service URL - verify api_url format and protocol (http/https)"},
		{"service", &ServiceError{Status: 500, Message: "oops"}, "oops"},
		{"unknown", errors.New("weird"), "Request failed: weird"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "512B", FormatSize(512))
	assert.Equal(t, "2.00KB", FormatSize(2048))
	assert.Equal(t, "1.00MB", FormatSize(1024*1024))
}

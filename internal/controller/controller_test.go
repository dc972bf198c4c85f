package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/request"
	"github.com/studiowebux/kwintel/internal/types"
	"github.com/studiowebux/kwintel/internal/validator"
)

type fakeService struct {
	mu     sync.Mutex
	calls  int
	result *types.ExtractionResult
	err    error
}

func (f *fakeService) Extract(ctx context.Context, out *request.Outbound) (*types.ExtractionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeService) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingNotifier struct {
	pushed []types.Notification
}

func (r *recordingNotifier) Push(message string, kind types.NotificationKind) types.Notification {
	n := types.Notification{ID: uint64(len(r.pushed) + 1), Message: message, Kind: kind}
	r.pushed = append(r.pushed, n)
	return n
}

func (r *recordingNotifier) Last() types.Notification {
	if len(r.pushed) == 0 {
		return types.Notification{}
	}
	return r.pushed[len(r.pushed)-1]
}

func validText() types.SubmissionInput {
	return types.NewTextInput("Machine learning improves search relevance.", types.DefaultParams())
}

func sampleResult() *types.ExtractionResult {
	return &types.ExtractionResult{
		RuleKeywords: []string{"search", "relevance"},
		MLKeywords:   []string{"machine learning"},
		Summary:      "Machine learning improves search.",
		Topic:        []string{"technology"},
	}
}

func TestController_SubmitSuccess(t *testing.T) {
	svc := &fakeService{result: sampleResult()}
	notes := &recordingNotifier{}
	c := New(svc, notes)

	out, err := c.Submit(context.Background(), validText())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.ID)

	assert.Equal(t, types.StateSucceeded, c.State())
	assert.Equal(t, sampleResult(), c.Result())
	assert.Equal(t, SuccessMessage, notes.Last().Message)
	assert.Equal(t, types.NotifySuccess, notes.Last().Kind)

	in, ok := c.Input()
	require.True(t, ok)
	assert.Equal(t, validText(), in)
}

func TestController_SubmitFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"service message", &executor.ServiceError{Status: 500, Message: "Model not loaded"}, "Model not loaded"},
		{"transport error", errors.New("dial tcp: connection refused"), executor.GenericFailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			notes := &recordingNotifier{}
			c := New(svc, notes)

			_, err := c.Submit(context.Background(), validText())
			require.Error(t, err)
			assert.Equal(t, types.StateFailed, c.State())
			assert.Nil(t, c.Result())
			assert.Equal(t, tt.wantMsg, notes.Last().Message)
			assert.Equal(t, types.NotifyError, notes.Last().Kind)
		})
	}
}

func TestController_RejectionLeavesStateUntouched(t *testing.T) {
	svc := &fakeService{result: sampleResult()}
	notes := &recordingNotifier{}
	c := New(svc, notes)

	_, err := c.Submit(context.Background(), validText())
	require.NoError(t, err)

	_, err = c.Begin(types.NewTextInput("  short  ", types.DefaultParams()))
	require.ErrorIs(t, err, validator.ErrRejected)

	assert.Equal(t, 1, svc.Calls())
	assert.Equal(t, types.StateSucceeded, c.State())
	assert.NotNil(t, c.Result())
	assert.Equal(t, validator.ReasonTooShort, notes.Last().Message)
	assert.Equal(t, types.NotifyError, notes.Last().Kind)
}

func TestController_NoInputRejected(t *testing.T) {
	tests := []struct {
		name  string
		input types.SubmissionInput
	}{
		{"empty text", types.NewTextInput("", types.DefaultParams())},
		{"file without blob or name", types.NewFileInput(nil, "", types.DefaultParams())},
		{"file named dot", types.NewFileInput(nil, ".", types.DefaultParams())},
		{"literal input named dot", types.SubmissionInput{Kind: types.InputFile, Name: "."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{result: sampleResult()}
			notes := &recordingNotifier{}
			c := New(svc, notes)

			_, err := c.Submit(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, validator.ReasonNoInput, validator.Reason(err))
			assert.Equal(t, 0, svc.Calls())
			assert.Equal(t, types.StateIdle, c.State())
			require.Len(t, notes.pushed, 1)
			assert.Equal(t, validator.ReasonNoInput, notes.Last().Message)
		})
	}
}

func TestController_TooLongTextRejected(t *testing.T) {
	svc := &fakeService{}
	notes := &recordingNotifier{}
	c := New(svc, notes)

	body := " " + strings.Repeat("a", validator.MaxTextLength)
	_, err := c.Begin(types.NewTextInput(body, types.DefaultParams()))
	require.Error(t, err)
	assert.Equal(t, validator.ReasonTooLong, notes.Last().Message)
}

func TestController_SingleFlight(t *testing.T) {
	svc := &fakeService{result: sampleResult()}
	notes := &recordingNotifier{}
	c := New(svc, notes)

	sub, err := c.Begin(validText())
	require.NoError(t, err)
	assert.Equal(t, types.StateSubmitting, c.State())
	assert.False(t, c.CanSubmit(true))

	_, err = c.Begin(validText())
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Empty(t, notes.pushed)

	out := c.Execute(context.Background(), sub)
	assert.True(t, c.Complete(out))
	assert.Equal(t, 1, svc.Calls())
	assert.True(t, c.CanSubmit(true))
	assert.False(t, c.CanSubmit(false))
}

func TestController_BeginClearsPreviousResult(t *testing.T) {
	svc := &fakeService{result: sampleResult()}
	c := New(svc, &recordingNotifier{})

	_, err := c.Submit(context.Background(), validText())
	require.NoError(t, err)
	require.NotNil(t, c.Result())

	_, err = c.Begin(validText())
	require.NoError(t, err)
	assert.Nil(t, c.Result())
}

func TestController_StaleOutcomeDropped(t *testing.T) {
	svc := &fakeService{result: sampleResult()}
	notes := &recordingNotifier{}
	c := New(svc, notes)

	sub, err := c.Begin(validText())
	require.NoError(t, err)
	out := c.Execute(context.Background(), sub)

	c.Clear()
	assert.False(t, c.Complete(out))
	assert.Equal(t, types.StateIdle, c.State())
	assert.Nil(t, c.Result())
	assert.Empty(t, notes.pushed)

	// A newer submission ignores the earlier outcome too
	sub2, err := c.Begin(validText())
	require.NoError(t, err)
	assert.False(t, c.Complete(out))
	assert.Equal(t, types.StateSubmitting, c.State())

	assert.True(t, c.Complete(c.Execute(context.Background(), sub2)))
	assert.Equal(t, types.StateSucceeded, c.State())
}

func TestController_ClearIsAtomic(t *testing.T) {
	svc := &fakeService{result: sampleResult()}
	c := New(svc, &recordingNotifier{})

	_, err := c.Submit(context.Background(), validText())
	require.NoError(t, err)

	c.Clear()
	assert.Equal(t, types.StateIdle, c.State())
	assert.Nil(t, c.Result())
	_, ok := c.Input()
	assert.False(t, ok)
}

func TestController_FileSubmission(t *testing.T) {
	svc := &fakeService{result: sampleResult()}
	c := New(svc, &recordingNotifier{})

	sub, err := c.Begin(types.NewFileInput([]byte("%PDF-1.4"), "/tmp/report.pdf", types.DefaultParams()))
	require.NoError(t, err)
	assert.Equal(t, request.PathExtractPDF, sub.Request.Path)
	assert.True(t, sub.Request.IsMultipart())
}

func TestController_NilResultStoredAsEmpty(t *testing.T) {
	svc := &fakeService{}
	c := New(svc, &recordingNotifier{})

	_, err := c.Submit(context.Background(), validText())
	require.NoError(t, err)
	require.NotNil(t, c.Result())
	assert.True(t, c.Result().IsEmpty())
}

func TestResultStore_ReturnsCopies(t *testing.T) {
	s := NewResultStore()
	assert.False(t, s.Present())

	s.Set(sampleResult())
	got := s.Get()
	got.MLKeywords[0] = "mutated"

	assert.Equal(t, "machine learning", s.Get().MLKeywords[0])
	s.Clear()
	assert.Nil(t, s.Get())
}

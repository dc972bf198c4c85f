// Package controller drives a submission from validation to a stored result.
//
// A submission is split into three steps so an event loop can run the network
// call off its own goroutine:
//
//	sub, err := ctrl.Begin(input)      // validate, build, clear result, state = submitting
//	out := ctrl.Execute(ctx, sub)      // network call, no lock held
//	applied := ctrl.Complete(out)      // store result or failure, push notification
//
// Every Begin and Clear advances a monotonic submission id. Complete drops an
// outcome whose id is no longer current, so only the last issued request can
// change state.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/request"
	"github.com/studiowebux/kwintel/internal/types"
	"github.com/studiowebux/kwintel/internal/validator"
)

// SuccessMessage is pushed when an analysis completes
const SuccessMessage = "Analysis completed successfully!"

// ErrInFlight is returned when a submission is already in progress
var ErrInFlight = errors.New("a submission is already in progress")

// Notifier receives user-facing status messages
type Notifier interface {
	Push(message string, kind types.NotificationKind) types.Notification
}

// Submission is an accepted request waiting to be executed
type Submission struct {
	ID      uint64
	Input   types.SubmissionInput
	Request *request.Outbound
}

// Outcome is the result of executing a submission
type Outcome struct {
	ID       uint64
	Result   *types.ExtractionResult
	Err      error
	Duration time.Duration
}

// Controller owns the submission state, the current input and the result store
type Controller struct {
	mu       sync.Mutex
	state    types.SubmissionState
	input    *types.SubmissionInput
	id       uint64
	store    *ResultStore
	service  executor.Extractor
	notifier Notifier
}

// New creates a controller in the idle state
func New(service executor.Extractor, notifier Notifier) *Controller {
	return &Controller{
		state:    types.StateIdle,
		store:    NewResultStore(),
		service:  service,
		notifier: notifier,
	}
}

// Begin validates the input and moves the controller into the submitting state.
// Rejected input leaves state and result untouched.
func (c *Controller) Begin(in types.SubmissionInput) (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == types.StateSubmitting {
		return nil, ErrInFlight
	}

	if err := validator.Validate(in); err != nil {
		c.notifier.Push(validator.Reason(err), types.NotifyError)
		return nil, err
	}

	out, err := request.Build(in)
	if err != nil {
		c.notifier.Push(executor.GenericFailureMessage, types.NotifyError)
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.store.Clear()
	c.id++
	c.state = types.StateSubmitting
	c.input = &in

	return &Submission{ID: c.id, Input: in, Request: out}, nil
}

// Execute performs the network call for sub. It does not touch controller state.
func (c *Controller) Execute(ctx context.Context, sub *Submission) Outcome {
	start := time.Now()
	result, err := c.service.Extract(ctx, sub.Request)
	return Outcome{
		ID:       sub.ID,
		Result:   result,
		Err:      err,
		Duration: time.Since(start),
	}
}

// Complete applies an outcome. It returns false when the outcome is stale.
func (c *Controller) Complete(out Outcome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if out.ID != c.id || c.state != types.StateSubmitting {
		return false
	}

	if out.Err != nil {
		c.state = types.StateFailed
		c.notifier.Push(executor.MessageFrom(out.Err), types.NotifyError)
		return true
	}

	result := out.Result
	if result == nil {
		result = &types.ExtractionResult{}
	}
	c.store.Set(result)
	c.state = types.StateSucceeded
	c.notifier.Push(SuccessMessage, types.NotifySuccess)
	return true
}

// Submit runs a whole submission synchronously
func (c *Controller) Submit(ctx context.Context, in types.SubmissionInput) (Outcome, error) {
	sub, err := c.Begin(in)
	if err != nil {
		return Outcome{}, err
	}
	out := c.Execute(ctx, sub)
	c.Complete(out)
	return out, out.Err
}

// Clear returns to idle and discards the input and result.
// The outcome of a submission still in flight is dropped when it arrives.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.id++
	c.state = types.StateIdle
	c.input = nil
	c.store.Clear()
}

// State returns the current submission state
func (c *Controller) State() types.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns a copy of the stored result, or nil
func (c *Controller) Result() *types.ExtractionResult {
	return c.store.Get()
}

// Input returns the input of the current or last submission
func (c *Controller) Input() (types.SubmissionInput, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.input == nil {
		return types.SubmissionInput{}, false
	}
	return *c.input, true
}

// CanSubmit reports whether the submit action should be enabled
func (c *Controller) CanSubmit(hasInput bool) bool {
	return hasInput && c.State() != types.StateSubmitting
}

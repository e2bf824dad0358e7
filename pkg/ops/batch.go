package ops

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/identity-console/internal/constants"
)

// ErrBatchFailed is returned by BatchResults.Err when any operation failed.
var ErrBatchFailed = errors.New("batch failed")

// BatchOperation is one mutation in a batch.
type BatchOperation struct {
	ID       string
	Label    string
	Run      func(ctx context.Context) (*ActionResult, error)
	Callback func(result *BatchResult)
}

// BatchResult is the outcome of one BatchOperation.
type BatchResult struct {
	ID       string        `json:"id"              yaml:"id"`
	Label    string        `json:"label"           yaml:"label"`
	Success  bool          `json:"success"         yaml:"success"`
	Result   *ActionResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error    error         `json:"-"               yaml:"-"`
	Message  string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration"        yaml:"duration"`
}

// BatchResults is the ordered outcome of a batch.
type BatchResults []BatchResult

// Failed returns the IDs of failed operations in input order.
func (r BatchResults) Failed() []string {
	var failed []string

	for _, result := range r {
		if !result.Success {
			failed = append(failed, result.ID)
		}
	}

	return failed
}

// Err reports failed operations, or nil when every operation succeeded.
func (r BatchResults) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %d of %d operations failed: %s", ErrBatchFailed, len(failed), len(r), strings.Join(failed, ", "))
}

// BatchExecutor runs mutations with bounded concurrency. Results keep the
// input order. Each operation gets its own timeout.
type BatchExecutor struct {
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	return &BatchExecutor{
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs operations and waits for all of them.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) BatchResults {
	results := make(BatchResults, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results
}

func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{ID: operation.ID, Label: operation.Label}

	if operation.Run == nil {
		result.Error = fmt.Errorf("%w: %s", ErrBatchFailed, "operation has no action")
		result.Message = result.Error.Error()

		return result
	}

	action, err := operation.Run(ctx)
	result.Success = err == nil
	result.Result = action
	result.Error = err

	if err != nil {
		result.Message = err.Error()
	}

	return result
}

// BatchBuilder collects mutations against one client.
type BatchBuilder struct {
	client     Client
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder(client Client) *BatchBuilder {
	return &BatchBuilder{
		client:     client,
		operations: make([]BatchOperation, 0),
	}
}

// AddAcknowledgeAlert adds an alert acknowledgement.
func (b *BatchBuilder) AddAcknowledgeAlert(id string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:    id,
		Label: "acknowledge alert #" + id,
		Run: func(ctx context.Context) (*ActionResult, error) {
			return b.client.Alerts().Acknowledge(ctx, id)
		},
	})
}

// AddResolveViolation adds an origin violation resolution.
func (b *BatchBuilder) AddResolveViolation(id string, request *ResolveViolationRequest) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:    id,
		Label: "resolve violation #" + id,
		Run: func(ctx context.Context) (*ActionResult, error) {
			return b.client.Identity().ResolveViolation(ctx, id, request)
		},
	})
}

// AddMarkLegacy adds a mark-legacy mutation for a person.
func (b *BatchBuilder) AddMarkLegacy(personKey string, request *MarkLegacyRequest) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:    personKey,
		Label: "mark " + personKey + " legacy",
		Run: func(ctx context.Context) (*ActionResult, error) {
			return b.client.Identity().MarkLegacy(ctx, personKey, request)
		},
	})
}

// AddOperation adds a custom operation. An empty ID gets the operation's
// position.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	if operation.ID == "" {
		operation.ID = strconv.Itoa(len(b.operations) + 1)
	}

	b.operations = append(b.operations, operation)

	return b
}

// Build returns the collected operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}

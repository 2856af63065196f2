package circleci

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
)

// ErrNilBatchOperation marks an operation submitted without a Run function.
var ErrNilBatchOperation = errors.New("batch operation has no run function")

// BatchOperation is one independent client call executed as part of a batch.
type BatchOperation struct {
	// ID labels the operation in its result.
	ID string
	// Run performs the call against the executor's client.
	Run func(ctx context.Context, client Client) (interface{}, error)
	// Callback, when set, receives the result as soon as the operation
	// finishes.
	Callback func(result *BatchResult)
}

// BatchResult represents the outcome of one batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Data     interface{}
	Error    error
	Duration time.Duration
}

// BatchExecutor fans independent operations out over a client with bounded
// concurrency. Results keep the submission order.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a batch executor. Non-positive concurrency
// selects the default limit.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout bounds each individual operation.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs the operations, at most concurrency at a time, and returns
// one result per operation in submission order. Individual failures land in
// their result; cancellation marks the remaining operations with the context
// error.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results[index] = BatchResult{ID: operation.ID, Error: ctx.Err()}

				return
			}

			defer func() { <-semaphore }()

			result := b.executeOperation(ctx, operation)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, ctx.Err()
}

// executeOperation runs one operation under the per-operation timeout.
func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	if operation.Run == nil {
		result.Error = ErrNilBatchOperation

		return result
	}

	opCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	data, err := operation.Run(opCtx, b.client)
	result.Duration = time.Since(start)
	result.Data = data
	result.Error = err
	result.Success = err == nil

	return result
}

// BatchBuilder assembles batch operations fluently.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddTriggerPipeline adds a pipeline trigger on a project.
func (b *BatchBuilder) AddTriggerPipeline(id, projectSlug string, req *TriggerPipelineRequest) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID: id,
		Run: func(ctx context.Context, client Client) (interface{}, error) {
			return client.Pipelines().Trigger(ctx, projectSlug, req)
		},
	})
}

// AddEnvVar adds the creation of one project environment variable.
func (b *BatchBuilder) AddEnvVar(id, vcsType, org, repo, name, value string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID: id,
		Run: func(ctx context.Context, client Client) (interface{}, error) {
			return client.Projects().AddEnvVar(ctx, vcsType, org, repo, name, value)
		},
	})
}

// AddCancelWorkflow adds a workflow cancellation.
func (b *BatchBuilder) AddCancelWorkflow(id, workflowID string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID: id,
		Run: func(ctx context.Context, client Client) (interface{}, error) {
			return client.Workflows().Cancel(ctx, workflowID)
		},
	})
}

// AddGetPipeline adds a pipeline fetch by ID.
func (b *BatchBuilder) AddGetPipeline(id, pipelineID string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID: id,
		Run: func(ctx context.Context, client Client) (interface{}, error) {
			return client.Pipelines().Get(ctx, pipelineID)
		},
	})
}

// AddGetProject adds a project fetch by slug.
func (b *BatchBuilder) AddGetProject(id, projectSlug string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID: id,
		Run: func(ctx context.Context, client Client) (interface{}, error) {
			return client.Projects().Get(ctx, projectSlug)
		},
	})
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the assembled operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}

// EnvVarPair names one environment variable for batch creation.
type EnvVarPair struct {
	Name  string
	Value string
}

// BatchAddEnvVars creates several project environment variables
// concurrently, one result per variable keyed by its name.
func BatchAddEnvVars(ctx context.Context, client Client, vcsType, org, repo string, vars []EnvVarPair, concurrency int) ([]BatchResult, error) {
	builder := NewBatchBuilder()
	for _, envVar := range vars {
		builder.AddEnvVar(envVar.Name, vcsType, org, repo, envVar.Name, envVar.Value)
	}

	return NewBatchExecutor(client, concurrency).Execute(ctx, builder.Build())
}

// BatchTriggerPipelines triggers the same pipeline request on several
// projects concurrently, one result per project keyed by its slug.
func BatchTriggerPipelines(ctx context.Context, client Client, projectSlugs []string, req *TriggerPipelineRequest, concurrency int) ([]BatchResult, error) {
	builder := NewBatchBuilder()
	for _, slug := range projectSlugs {
		builder.AddTriggerPipeline(slug, slug, req)
	}

	return NewBatchExecutor(client, concurrency).Execute(ctx, builder.Build())
}

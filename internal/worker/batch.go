package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/agora-platform/agora/internal/model"
)

// Verifier is the interface for verifying a single argument
type Verifier interface {
	VerifyArgument(ctx context.Context, title, content, question string) (model.Verdict, error)
}

// Result represents the outcome of verifying one argument in a batch
type Result struct {
	ArgumentID int64
	Title      string
	Verdict    model.Verdict
	Err        error
}

// BatchVerifier verifies many arguments concurrently. The pipeline itself is
// strictly sequential per argument; concurrency across independent runs
// lives here. A shared rate limiter paces runs so batch jobs do not hammer
// the remote text-generation and search providers.
type BatchVerifier struct {
	verifier    Verifier
	concurrency int
	limiter     *rate.Limiter
}

// NewBatchVerifier creates a batch verifier from the worker configuration
func NewBatchVerifier(verifier Verifier, cfg model.WorkerConfig) *BatchVerifier {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &BatchVerifier{
		verifier:    verifier,
		concurrency: concurrency,
		limiter:     rate.NewLimiter(limit, burst),
	}
}

// VerifyAll verifies every argument and returns one result per argument, in
// input order. Per-argument failures are recorded in their result; they do
// not abort the batch.
func (b *BatchVerifier) VerifyAll(ctx context.Context, question string, arguments []model.Argument) []Result {
	if len(arguments) == 0 {
		return []Result{}
	}

	results := make([]Result, len(arguments))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < b.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.verifyOne(ctx, question, arguments[i])
			}
		}()
	}

	for i := range arguments {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (b *BatchVerifier) verifyOne(ctx context.Context, question string, arg model.Argument) Result {
	result := Result{ArgumentID: arg.ID, Title: arg.Title}

	if err := b.limiter.Wait(ctx); err != nil {
		result.Err = err
		return result
	}

	result.Verdict, result.Err = b.verifier.VerifyArgument(ctx, arg.Title, arg.Content, question)
	return result
}

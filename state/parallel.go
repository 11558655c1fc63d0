package state

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/state/runtime/evm"
)

// Job is one independent execution. A nil context Address deploys Code,
// otherwise Code (or the code at Address when nil) is called.
type Job struct {
	Context *runtime.ExecutionContext
	Code    []byte
}

// IsolatedResult is the outcome of a job together with the state it produced
type IsolatedResult struct {
	Result *runtime.ExecutionResult
	Store  *Store
}

// ExecuteIsolated runs every job concurrently, each against its own copy
// of base. Results are returned in job order and base is never modified.
// The first fatal error cancels the jobs that have not started yet.
func ExecuteIsolated(
	ctx context.Context,
	base *Store,
	jobs []Job,
	logger hclog.Logger,
	opts ...evm.Option,
) ([]*IsolatedResult, error) {
	results := make([]*IsolatedResult, len(jobs))

	// copies are taken up front, base is not safe for concurrent use
	stores := make([]*Store, len(jobs))
	for i := range jobs {
		stores[i] = base.Copy()
	}

	g, gCtx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		i, job := i, job

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			executor := NewExecutor(stores[i], logger, opts...)

			var (
				res *runtime.ExecutionResult
				err error
			)

			if job.Context != nil && job.Context.Address == nil {
				res, err = executor.Create(job.Context, job.Code)
			} else {
				res, err = executor.Call(job.Context, job.Code)
			}

			if err != nil {
				return err
			}

			results[i] = &IsolatedResult{
				Result: res,
				Store:  stores[i],
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

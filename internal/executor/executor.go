// Package executor drives a Plan through a stack's providers: it acquires
// the state store lock for the run, performs the read-only prepass,
// dispatches each operation in plan order (materializing any
// DependentResource against the live working map as it goes), and commits
// the resulting state only if every operation succeeded.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drft-io/drft/internal/errs"
	"github.com/drft-io/drft/internal/planner"
	"github.com/drft-io/drft/internal/provider"
	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/internal/state"
)

// Result is the outcome of dispatching a single plan Operation.
type Result struct {
	Operation planner.Operation
	Success   bool
	NewState  resource.ResourceState
	Err       error
}

// Report is the complete outcome of an Execute run. Success is true only
// when every Result in Results succeeded; a run that fails fatally before
// or during the loop (ProviderNotFound, StateError, a failed read-only
// prepass) never produces a Report at all, it returns a non-nil error
// instead.
type Report struct {
	Results []Result
	Success bool
}

// Execute runs plan against backend and providers, following the
// component's fixed operation sequence: lock, load, read-only prepass,
// dispatch loop, all-or-nothing commit. desired is the full set of
// resources the caller wants managed, consulted only to find read-only
// resources the prepass must observe. stackName names the State persisted
// on a successful commit. metrics may be nil.
func Execute(ctx context.Context, backend state.Backend, providers *provider.Registry, desired []resource.Resource, plan *planner.Plan, stackName string, metrics *Metrics) (*Report, error) {
	if err := backend.Lock(ctx); err != nil {
		return nil, err
	}
	defer backend.Unlock()

	actual, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	working := make(map[string]resource.ResourceState, len(actual.Resources))
	for id, st := range actual.Resources {
		working[id] = st
	}

	if err := readOnlyPrepass(ctx, providers, desired, working); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(plan.Operations))
	deleted := make(map[string]bool)
	allSucceeded := true

	for _, op := range plan.Operations {
		result, err := dispatch(ctx, providers, working, op, metrics)
		if err != nil {
			// ProviderNotFound and the DependentResource invariant
			// violation are fatal to the whole run, never recorded
			// per-operation.
			return nil, err
		}
		results = append(results, result)
		if !result.Success {
			allSucceeded = false
			continue
		}
		id := operationID(op)
		if op.Kind == planner.Delete {
			deleted[id] = true
		} else {
			working[id] = result.NewState
		}
	}

	if !allSucceeded {
		return &Report{Results: results, Success: false}, nil
	}

	for id := range deleted {
		delete(working, id)
	}

	toSave := resource.NewState(stackName)
	toSave.Lineage = actual.Lineage
	toSave.Resources = working
	toSave.Metadata = actual.Metadata
	if err := backend.Save(ctx, toSave); err != nil {
		return nil, err
	}

	return &Report{Results: results, Success: true}, nil
}

// readOnlyPrepass observes every read-only resource in desired that isn't
// already in the working map. A not-found read is escalated to a fatal
// ValidationError naming the resource, aborting the run before any
// operation is dispatched.
func readOnlyPrepass(ctx context.Context, providers *provider.Registry, desired []resource.Resource, working map[string]resource.ResourceState) error {
	for _, r := range desired {
		if !r.IsReadOnly() {
			continue
		}
		id := r.ResourceID()
		if _, ok := working[id]; ok {
			continue
		}

		p := providers.Lookup(r)
		if p == nil {
			return errs.ProviderNotFound(id)
		}

		st, err := p.Read(ctx, r)
		if err != nil {
			var notFound *errs.ResourceNotFoundError
			if errors.As(err, &notFound) {
				return errs.Validation("read-only resource %q not found", id)
			}
			return err
		}
		working[id] = st
	}
	return nil
}

// dispatch resolves a single operation's resource (materializing a
// DependentResource if needed), locates the handling provider, and calls
// the matching provider method. Its error return is reserved for the two
// fatal conditions the run cannot continue past; everything else is
// folded into the returned Result.
func dispatch(ctx context.Context, providers *provider.Registry, working map[string]resource.ResourceState, op planner.Operation, metrics *Metrics) (Result, error) {
	target := op.Resource
	if dr, ok := target.(*resource.DependentResource); ok {
		built, err := dr.Materialize(working)
		if err != nil {
			return Result{}, fmt.Errorf("executor: materialize %q: %w", dr.ResourceID(), err)
		}
		target = built
	}

	lookup := target
	if op.Kind == planner.Delete {
		lookup = op.Current.StateResource()
	}

	p := providers.Lookup(lookup)
	if p == nil {
		return Result{}, errs.ProviderNotFound(lookup.ResourceID())
	}

	start := time.Now()
	var newState resource.ResourceState
	var opErr error
	retryPolicy := DefaultRetryPolicy()

	switch op.Kind {
	case planner.Create:
		opErr = RetryWithBackoff(ctx, retryPolicy, func() error {
			var err error
			newState, err = p.Create(ctx, target)
			return err
		}, IsTransientError)
	case planner.Update:
		opErr = RetryWithBackoff(ctx, retryPolicy, func() error {
			var err error
			newState, err = p.Update(ctx, op.Current, target)
			return err
		}, IsTransientError)
	case planner.Delete:
		opErr = RetryWithBackoff(ctx, retryPolicy, func() error {
			return p.Delete(ctx, op.Current)
		}, IsTransientError)
	}

	metrics.observe(op.Kind.String(), opErr == nil, time.Since(start).Seconds())

	reportedOp := op
	reportedOp.Resource = target
	if opErr != nil {
		return Result{
			Operation: reportedOp,
			Success:   false,
			Err:       errs.Provider(lookup.ResourceID(), op.Kind.String(), opErr),
		}, nil
	}
	return Result{Operation: reportedOp, Success: true, NewState: newState}, nil
}

func operationID(op planner.Operation) string {
	if op.Kind == planner.Delete {
		return op.Current.StateResource().ResourceID()
	}
	return op.Resource.ResourceID()
}

// Package stack ties a named set of resources and their providers to a
// State Store, and offers the entry points (Plan, Apply, PlanDestroy,
// Destroy, Refresh) a front-end drives the core through. It lives in its own package,
// separate from internal/resource, so that resource/provider/state never
// need to import each other just to know about one another's existence.
package stack

import (
	"context"
	"errors"
	"reflect"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/drft-io/drft/internal/errs"
	"github.com/drft-io/drft/internal/executor"
	"github.com/drft-io/drft/internal/planner"
	"github.com/drft-io/drft/internal/provider"
	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/internal/serializer"
	"github.com/drft-io/drft/internal/state"
)

// Stack is the unit a CLI (or any other front-end) drives: a name, the
// providers that can realize its resources, the desired resources
// themselves, and the store holding its actual state.
type Stack struct {
	Name      string
	Providers []provider.Provider
	Resources []resource.Resource
	Store     state.Backend
}

// New constructs a Stack. Providers are consulted in the order given, per
// the provider contract's "first provider in stack order" rule.
func New(name string, providers []provider.Provider, resources []resource.Resource, store state.Backend) *Stack {
	return &Stack{Name: name, Providers: providers, Resources: resources, Store: store}
}

// ProviderRegistry builds a lookup registry over the stack's providers, in
// declaration order.
func (s *Stack) ProviderRegistry() *provider.Registry {
	return provider.NewRegistry(s.Providers...)
}

// Plan loads the stack's actual state under lock and diffs it against the
// desired resources. The lock is held only for the duration of the load;
// a caller that goes on to Apply re-acquires it, since the executor's own
// lock window is what actually has to span the whole run.
func (s *Stack) Plan(ctx context.Context, reg *serializer.Registry, verbose bool) (*planner.Plan, error) {
	if err := s.Store.Lock(ctx); err != nil {
		return nil, err
	}
	defer s.Store.Unlock()

	actual, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return planner.Build(reg, s.Resources, actual, verbose)
}

// Apply drives plan through the stack's providers and commits the result.
// plan is normally the output of a prior Plan call shown to the user for
// confirmation; Execute re-loads state under its own lock before
// dispatching, so a plan computed for display is re-validated against
// whatever is current at apply time.
func (s *Stack) Apply(ctx context.Context, plan *planner.Plan, metrics *executor.Metrics) (*executor.Report, error) {
	return executor.Execute(ctx, s.Store, s.ProviderRegistry(), s.Resources, plan, s.Name, metrics)
}

// PlanDestroy previews what Destroy would do, without applying it: every
// actual resource scheduled for deletion in reverse dependency order. A
// caller typically shows this to the user for confirmation before calling
// Destroy, the same plan-then-apply split Plan/Apply offer.
func (s *Stack) PlanDestroy(ctx context.Context, reg *serializer.Registry, verbose bool) (*planner.Plan, error) {
	if err := s.Store.Lock(ctx); err != nil {
		return nil, err
	}
	defer s.Store.Unlock()

	actual, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return planner.Build(reg, nil, actual, verbose)
}

// Destroy plans against an empty desired set, so every actual resource is
// scheduled for deletion in reverse dependency order, then applies that
// plan.
func (s *Stack) Destroy(ctx context.Context, reg *serializer.Registry, verbose bool, metrics *executor.Metrics) (*planner.Plan, *executor.Report, error) {
	if err := s.Store.Lock(ctx); err != nil {
		return nil, nil, err
	}
	actual, err := s.Store.Load(ctx)
	if err != nil {
		s.Store.Unlock()
		return nil, nil, err
	}
	plan, err := planner.Build(reg, nil, actual, verbose)
	s.Store.Unlock()
	if err != nil {
		return nil, nil, err
	}

	report, err := executor.Execute(ctx, s.Store, s.ProviderRegistry(), nil, plan, s.Name, metrics)
	return plan, report, err
}

// RefreshResult reports the outcome of re-reading a single resource id
// during Refresh: "ok" (unchanged), "drifted" (the provider's observed
// state differs from what was persisted), or "deleted" (the provider
// reports the external object no longer exists).
type RefreshResult struct {
	ID     string
	Status string
}

// Refresh re-reads every resource currently in actual state from its
// provider and overwrites the persisted state with what it observes. It
// never issues a create, update, or delete against any provider; per
// §1's non-goals, refresh corrects the engine's own record of reality, it
// does not reconcile reality to match the desired shape.
//
// Per the provider lifecycle rule, every stack provider is initialized
// once before reads begin and disposed exactly once when Refresh returns,
// success or failure, in a guaranteed-release pattern. Reads for distinct
// resources run concurrently via errgroup, since each is an independent
// suspension point with no ordering dependency on its siblings.
func (s *Stack) Refresh(ctx context.Context) ([]RefreshResult, error) {
	if err := s.Store.Lock(ctx); err != nil {
		return nil, err
	}
	defer s.Store.Unlock()

	actual, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(actual.Resources) == 0 {
		return nil, nil
	}

	for _, p := range s.Providers {
		if err := p.Initialize(ctx); err != nil {
			return nil, err
		}
	}
	defer func() {
		for _, p := range s.Providers {
			_ = p.Dispose(ctx)
		}
	}()

	providers := s.ProviderRegistry()
	ids := make([]string, 0, len(actual.Resources))
	for id := range actual.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	newStates := make([]resource.ResourceState, len(ids))
	deleted := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, current := i, actual.Resources[id]
		g.Go(func() error {
			p := providers.Lookup(current.StateResource())
			if p == nil {
				return errs.ProviderNotFound(current.StateResource().ResourceID())
			}
			st, err := p.Read(gctx, current.StateResource())
			if err != nil {
				var notFound *errs.ResourceNotFoundError
				if errors.As(err, &notFound) {
					deleted[i] = true
					return nil
				}
				return err
			}
			newStates[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	refreshed := actual.Clone()
	results := make([]RefreshResult, len(ids))
	for i, id := range ids {
		switch {
		case deleted[i]:
			delete(refreshed.Resources, id)
			results[i] = RefreshResult{ID: id, Status: "deleted"}
		case reflect.DeepEqual(actual.Resources[id], newStates[i]):
			results[i] = RefreshResult{ID: id, Status: "ok"}
		default:
			refreshed.Resources[id] = newStates[i]
			results[i] = RefreshResult{ID: id, Status: "drifted"}
		}
	}

	if err := s.Store.Save(ctx, refreshed); err != nil {
		return nil, err
	}
	return results, nil
}

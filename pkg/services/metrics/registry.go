package metrics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/traffic-atlas/pkg/store/cloudflare"
)

// FetcherFactory builds a Fetcher bound to a Cloudflare client
type FetcherFactory func(client *cloudflare.Client, opts Options) (Fetcher, error)

// Registry manages metric fetcher strategies
type Registry interface {
	// Register adds a new strategy factory
	Register(strategy string, factory FetcherFactory) error
	// Create instantiates the fetcher for the given strategy
	Create(strategy string, client *cloudflare.Client, opts Options) (Fetcher, error)
	// ListStrategies returns the registered strategy names, sorted
	ListStrategies() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]FetcherFactory
}

func NewRegistry(factories map[string]FetcherFactory) Registry {
	r := &registry{
		factories: make(map[string]FetcherFactory, len(factories)),
	}
	for strategy, factory := range factories {
		r.factories[strategy] = factory
	}
	return r
}

// DefaultRegistry knows the REST dashboard and GraphQL strategies.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]FetcherFactory{
		cloudflare.StrategyREST:    RESTFactory,
		cloudflare.StrategyGraphQL: GraphQLFactory,
	})
}

func RESTFactory(client *cloudflare.Client, opts Options) (Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("cloudflare client cannot be nil")
	}
	return cloudflare.NewDashboardFetcher(client, opts.Window), nil
}

func GraphQLFactory(client *cloudflare.Client, opts Options) (Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("cloudflare client cannot be nil")
	}
	return cloudflare.NewGraphQLFetcher(client, opts.Window, opts.MaxBuckets), nil
}

func (r *registry) Register(strategy string, factory FetcherFactory) error {
	if strategy == "" {
		return fmt.Errorf("strategy name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[strategy]; exists {
		return fmt.Errorf("strategy %q is already registered", strategy)
	}

	r.factories[strategy] = factory
	return nil
}

func (r *registry) Create(strategy string, client *cloudflare.Client, opts Options) (Fetcher, error) {
	r.mu.RLock()
	factory, exists := r.factories[strategy]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("strategy %q is not registered", strategy)
	}

	return factory(client, opts)
}

func (r *registry) ListStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategies := make([]string, 0, len(r.factories))
	for strategy := range r.factories {
		strategies = append(strategies, strategy)
	}
	sort.Strings(strategies)
	return strategies
}

// Package collections is the launchpad's collection directory: base
// collections plus those deployed through the agent.
package collections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/chain"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

const (
	defaultGasEstimateETH = 0.005
	maxInsertAttempts     = 3
)

// Directory is an in-memory cache of collections over a Store.
// Base collections are never persisted and cannot be shadowed.
type Directory struct {
	store    Store
	deployer chain.Deployer
	gasETH   float64

	mu      sync.RWMutex
	base    map[string]domain.Collection
	cache   map[string]domain.Collection
	version int64

	// registerMu serialises registrations within the process; the store's
	// version check covers other processes.
	registerMu sync.Mutex
}

// Option configures a Directory.
type Option func(*Directory)

// WithGasEstimate sets the gas estimate given to newly registered collections.
func WithGasEstimate(eth float64) Option {
	return func(d *Directory) { d.gasETH = eth }
}

// WithBase replaces the built-in base collections.
func WithBase(base []domain.Collection) Option {
	return func(d *Directory) {
		d.base = make(map[string]domain.Collection, len(base))
		for _, c := range base {
			d.base[c.Key()] = c
		}
	}
}

// NewDirectory creates a directory. Call Refresh to load persisted entries;
// Lookup and Register also refresh on demand.
func NewDirectory(store Store, deployer chain.Deployer, opts ...Option) *Directory {
	d := &Directory{
		store:    store,
		deployer: deployer,
		gasETH:   defaultGasEstimateETH,
	}
	WithBase(BaseCollections())(d)
	for _, opt := range opts {
		opt(d)
	}
	d.cache = make(map[string]domain.Collection, len(d.base))
	for k, c := range d.base {
		d.cache[k] = c
	}
	return d
}

// Refresh reloads persisted collections into the cache.
func (d *Directory) Refresh(ctx context.Context) error {
	snap, err := d.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load collections: %w", err)
	}

	cache := make(map[string]domain.Collection, len(d.base)+len(snap.Collections))
	for _, c := range snap.Collections {
		cache[c.Key()] = c
	}
	for k, c := range d.base {
		cache[k] = c
	}

	d.mu.Lock()
	d.cache = cache
	d.version = snap.Version
	d.mu.Unlock()
	return nil
}

// Lookup finds a collection by name, ignoring case and surrounding space.
// A cache miss reloads the store before reporting ErrCollectionNotFound.
func (d *Directory) Lookup(ctx context.Context, name string) (domain.Collection, error) {
	key := domain.CollectionKey(name)
	if c, ok := d.cached(key); ok {
		return c, nil
	}
	if err := d.Refresh(ctx); err != nil {
		return domain.Collection{}, err
	}
	if c, ok := d.cached(key); ok {
		return c, nil
	}
	return domain.Collection{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, strings.TrimSpace(name))
}

// List returns every known collection ordered by name.
func (d *Directory) List(ctx context.Context) ([]domain.Collection, error) {
	if err := d.Refresh(ctx); err != nil {
		return nil, err
	}

	d.mu.RLock()
	out := make([]domain.Collection, 0, len(d.cache))
	for _, c := range d.cache {
		out = append(out, c)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

// Names reloads the store and returns the collection names ordered by name.
// When the reload fails it falls back to the cached names.
func (d *Directory) Names(ctx context.Context) []string {
	if err := d.Refresh(ctx); err != nil {
		slog.Warn("collection refresh failed, using cached names", "err", err)
	}

	d.mu.RLock()
	names := make([]string, 0, len(d.cache))
	for _, c := range d.cache {
		names = append(names, c.Name)
	}
	d.mu.RUnlock()

	sort.Slice(names, func(i, j int) bool { return strings.ToLower(names[i]) < strings.ToLower(names[j]) })
	return names
}

// Register deploys a contract for nc and records the new collection.
// Duplicates are rejected before anything is deployed.
func (d *Directory) Register(ctx context.Context, nc domain.NewCollection) (domain.Registration, error) {
	name := strings.TrimSpace(nc.Name)
	symbol := strings.ToUpper(strings.TrimSpace(nc.Symbol))
	if name == "" {
		return domain.Registration{}, fmt.Errorf("collection name is required")
	}
	if symbol == "" {
		return domain.Registration{}, fmt.Errorf("collection symbol is required")
	}
	if nc.PriceETH < 0 {
		return domain.Registration{}, fmt.Errorf("price_eth must not be negative")
	}
	if nc.Supply < 0 {
		return domain.Registration{}, fmt.Errorf("supply must not be negative")
	}

	d.registerMu.Lock()
	defer d.registerMu.Unlock()

	if err := d.Refresh(ctx); err != nil {
		return domain.Registration{}, err
	}
	if _, ok := d.cached(domain.CollectionKey(name)); ok {
		return domain.Registration{}, fmt.Errorf("%w: %s", domain.ErrDuplicateCollection, name)
	}

	receipt, err := d.deployer.Deploy(ctx, domain.DeployRequest{Name: name, Symbol: symbol})
	if err != nil {
		return domain.Registration{}, err
	}

	rec := domain.Collection{
		Name:            name,
		Symbol:          symbol,
		PriceETH:        nc.PriceETH,
		GasEstimateETH:  d.gasETH,
		IsFreeMint:      nc.PriceETH == 0,
		Supply:          domain.SupplyOf(nc.Supply),
		ContractAddress: receipt.ContractAddress,
		DeployTxHash:    receipt.TxHash,
		Description:     nc.Description,
	}

	if err := d.insert(ctx, rec); err != nil {
		slog.Warn("deployed contract not registered",
			"collection", name, "address", receipt.ContractAddress, "err", err)
		return domain.Registration{}, err
	}

	slog.Info("collection registered", "collection", name, "address", rec.ContractAddress)
	return domain.Registration{Collection: rec, TxHash: receipt.TxHash}, nil
}

func (d *Directory) insert(ctx context.Context, rec domain.Collection) error {
	for attempt := 1; ; attempt++ {
		d.mu.RLock()
		version := d.version
		d.mu.RUnlock()

		newVersion, err := d.store.Insert(ctx, rec, version)
		if err == nil {
			d.mu.Lock()
			d.cache[rec.Key()] = rec
			d.version = newVersion
			d.mu.Unlock()
			return nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt == maxInsertAttempts {
			return fmt.Errorf("persist collection: %w", err)
		}

		if err := d.Refresh(ctx); err != nil {
			return err
		}
		if _, ok := d.cached(rec.Key()); ok {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateCollection, rec.Name)
		}
	}
}

func (d *Directory) cached(key string) (domain.Collection, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.cache[key]
	return c, ok
}

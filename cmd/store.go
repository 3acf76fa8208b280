package cmd

import (
	"context"
	"fmt"
	"sync"
)

// Store is the query-cache handle the dashboard reads through. It is passed
// explicitly to whatever needs it; there is no package-level client.
//
// RefreshServices forces a refetch of the services collection.
// InvalidateService marks a single entry stale so the next access refetches.
// Both are requests, not queue entries: repeated calls do not pile up work.
type Store interface {
	Services(ctx context.Context) ([]Service, error)
	Service(ctx context.Context, id string) (Service, error)
	Interfaces(ctx context.Context) ([]Interface, error)
	Stats(ctx context.Context) (SystemStats, error)
	RefreshServices(ctx context.Context) error
	InvalidateService(id string)
}

// daemonStore caches daemon responses. Collections are fetched lazily and
// reused until invalidated or force-refreshed.
type daemonStore struct {
	client *DaemonClient

	mu         sync.Mutex
	services   []Service
	hasList    bool
	entries    map[string]Service
	interfaces []Interface
	hasIfaces  bool
}

// NewStore creates a daemon-backed store.
func NewStore(client *DaemonClient) Store {
	return &daemonStore{
		client:  client,
		entries: make(map[string]Service),
	}
}

func (st *daemonStore) Services(ctx context.Context) ([]Service, error) {
	st.mu.Lock()
	if st.hasList {
		cached := st.services
		st.mu.Unlock()
		return cached, nil
	}
	st.mu.Unlock()

	return st.fetchServices(ctx)
}

func (st *daemonStore) fetchServices(ctx context.Context) ([]Service, error) {
	services, err := st.client.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}

	st.mu.Lock()
	st.services = services
	st.hasList = true
	st.mu.Unlock()
	return services, nil
}

func (st *daemonStore) Service(ctx context.Context, id string) (Service, error) {
	st.mu.Lock()
	if svc, ok := st.entries[id]; ok {
		st.mu.Unlock()
		return svc, nil
	}
	st.mu.Unlock()

	svc, err := st.client.Service(ctx, id)
	if err != nil {
		return Service{}, fmt.Errorf("failed to fetch service %s: %w", id, err)
	}

	st.mu.Lock()
	st.entries[id] = svc
	st.mu.Unlock()
	return svc, nil
}

func (st *daemonStore) Interfaces(ctx context.Context) ([]Interface, error) {
	st.mu.Lock()
	if st.hasIfaces {
		cached := st.interfaces
		st.mu.Unlock()
		return cached, nil
	}
	st.mu.Unlock()

	ifaces, err := st.client.Interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interfaces: %w", err)
	}

	st.mu.Lock()
	st.interfaces = ifaces
	st.hasIfaces = true
	st.mu.Unlock()
	return ifaces, nil
}

func (st *daemonStore) Stats(ctx context.Context) (SystemStats, error) {
	// Stats are a live probe; never cached.
	return st.client.Stats(ctx)
}

// RefreshServices refetches the services collection immediately, replacing
// the cached copy. Safe to call repeatedly.
func (st *daemonStore) RefreshServices(ctx context.Context) error {
	_, err := st.fetchServices(ctx)
	return err
}

// InvalidateService drops the cached single-service entry; the next
// Service(id) call refetches from the daemon.
func (st *daemonStore) InvalidateService(id string) {
	st.mu.Lock()
	delete(st.entries, id)
	st.mu.Unlock()
}

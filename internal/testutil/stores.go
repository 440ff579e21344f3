package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/minerush/internal/persist"
	"github.com/roach88/minerush/internal/remote"
)

// MemoryStore is an in-memory persist.LocalStore.
//
// Set Err to make every call fail, or GetErr to fail reads only. Writes
// counts successful Set calls.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	Err    error
	GetErr error
	Writes int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements persist.LocalStore.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, false, m.Err
	}
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.data[key]
	return append([]byte(nil), v...), ok, nil
}

// Set implements persist.LocalStore.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.data[key] = append([]byte(nil), value...)
	m.Writes++
	return nil
}

// Remove implements persist.LocalStore.
func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.data, key)
	return nil
}

// Put seeds a raw value without counting it as a write.
func (m *MemoryStore) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
}

// MemoryRemote is an in-memory persist.RemoteStore keyed by user id.
//
// FetchErr and UpsertErr inject failures. Delay makes every call wait,
// honouring context cancellation.
type MemoryRemote struct {
	mu        sync.Mutex
	records   map[string]remote.Record
	nextID    int
	FetchErr  error
	UpsertErr error
	Delay     time.Duration
	Upserts   int
}

// NewMemoryRemote creates an empty remote.
func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{records: make(map[string]remote.Record)}
}

func (m *MemoryRemote) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(m.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetch implements persist.RemoteStore.
func (m *MemoryRemote) Fetch(ctx context.Context, userID string) (*remote.Record, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	rec, ok := m.records[userID]
	if !ok {
		return nil, nil
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return &rec, nil
}

// Upsert implements persist.RemoteStore.
func (m *MemoryRemote) Upsert(ctx context.Context, rec remote.Record) (remote.Record, error) {
	if err := m.wait(ctx); err != nil {
		return remote.Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return remote.Record{}, m.UpsertErr
	}
	if existing, ok := m.records[rec.UserID]; ok {
		rec.RowID = existing.RowID
	} else {
		m.nextID++
		rec.RowID = fmt.Sprintf("row-%d", m.nextID)
	}
	rec.Data = append([]byte(nil), rec.Data...)
	m.records[rec.UserID] = rec
	m.Upserts++
	return rec, nil
}

// Delete implements persist.RemoteStore.
func (m *MemoryRemote) Delete(ctx context.Context, userID string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, userID)
	return nil
}

// Put seeds a record without counting it as an upsert.
func (m *MemoryRemote) Put(rec remote.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.RowID == "" {
		m.nextID++
		rec.RowID = fmt.Sprintf("row-%d", m.nextID)
	}
	m.records[rec.UserID] = rec
}

// Record returns the stored record for userID.
func (m *MemoryRemote) Record(userID string) (remote.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	return rec, ok
}

// BlockingIdentity never answers until its context is done, simulating a
// session check that hangs.
var BlockingIdentity = persist.IdentityFunc(func(ctx context.Context) (persist.Identity, error) {
	<-ctx.Done()
	return persist.Identity{}, ctx.Err()
})

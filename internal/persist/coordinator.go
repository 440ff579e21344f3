package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/minerush/internal/catalog"
	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/remote"
)

// SnapshotKey is the local store key holding the serialized GameState.
const SnapshotKey = "minerush.save"

// Default bounds on collaborator calls.
const (
	DefaultIdentityTimeout = 5 * time.Second
	DefaultRemoteTimeout   = 10 * time.Second
)

// LocalStore is the device-local key-value store.
type LocalStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// RemoteStore is the per-user cloud store.
type RemoteStore interface {
	Fetch(ctx context.Context, userID string) (*remote.Record, error)
	Upsert(ctx context.Context, rec remote.Record) (remote.Record, error)
	Delete(ctx context.Context, userID string) error
}

// Source names where a loaded snapshot came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceLocal   Source = "local"
	SourceRemote  Source = "remote"
)

// LoadResult describes a completed load.
type LoadResult struct {
	Source Source
	// Corrupt is set when a stored payload failed to decode and was ignored.
	Corrupt bool
	// RemoteErr is a recoverable remote failure, or nil.
	RemoteErr error
}

// SaveResult describes a completed save.
type SaveResult struct {
	LastSaved int64
	Version   int64
	// Remote is true when the remote copy was written.
	Remote bool
	// RemoteErr is a recoverable remote failure, or nil.
	RemoteErr error
}

// Notice returns the user-facing message for a recoverable remote failure,
// or "".
func (r SaveResult) Notice() string {
	if r.RemoteErr == nil {
		return ""
	}
	return "Saved on this device; " + r.RemoteErr.Error()
}

// Coordinator reconciles the local and remote copies of the snapshot.
//
// A Coordinator is not safe for concurrent use; the engine calls it from
// its event loop only.
type Coordinator struct {
	catalog         *catalog.Catalog
	local           LocalStore
	remote          RemoteStore
	identity        IdentityProvider
	now             func() time.Time
	logger          *slog.Logger
	identityTimeout time.Duration
	remoteTimeout   time.Duration
	rowID           string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRemote enables the remote store.
func WithRemote(r RemoteStore) Option {
	return func(c *Coordinator) { c.remote = r }
}

// WithIdentity sets the identity provider. Without one the coordinator runs
// local-only.
func WithIdentity(p IdentityProvider) Option {
	return func(c *Coordinator) { c.identity = p }
}

// WithClock sets the wall clock used to stamp lastSaved.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithTimeouts bounds identity resolution and each remote call.
func WithTimeouts(identity, remote time.Duration) Option {
	return func(c *Coordinator) {
		c.identityTimeout = identity
		c.remoteTimeout = remote
	}
}

// New creates a Coordinator over a local store. Snapshots are decoded
// against cat.
func New(cat *catalog.Catalog, local LocalStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		catalog:         cat,
		local:           local,
		now:             time.Now,
		logger:          slog.Default(),
		identityTimeout: DefaultIdentityTimeout,
		remoteTimeout:   DefaultRemoteTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolveIdentity returns the current identity, or an unauthenticated one
// if no provider is set, the provider fails, or it does not answer within
// the identity timeout.
func (c *Coordinator) resolveIdentity(ctx context.Context) Identity {
	if c.identity == nil || c.remote == nil {
		return Identity{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.identityTimeout)
	defer cancel()

	type answer struct {
		id  Identity
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		id, err := c.identity.Identity(ctx)
		ch <- answer{id, err}
	}()

	select {
	case a := <-ch:
		if a.err != nil {
			c.logger.Warn("identity resolution failed, continuing local-only", "error", a.err)
			return Identity{}
		}
		if !a.id.Authenticated || a.id.UserID == "" {
			return Identity{}
		}
		return a.id
	case <-ctx.Done():
		c.logger.Warn("identity resolution timed out, continuing local-only",
			"timeout", c.identityTimeout)
		return Identity{}
	}
}

// Load reads the snapshot. It returns nil when neither store holds a
// usable snapshot; the caller then starts from the default state.
//
// The remote copy is read when the player is authenticated and either
// force is set, the player just logged in, or no local snapshot exists.
// When both copies exist the one with the greater lastSaved wins and is
// written back to the other store.
//
// A local store failure is returned as an error unless a remote copy can
// be used instead, so callers never mistake an unreadable save for a
// missing one.
func (c *Coordinator) Load(ctx context.Context, force bool) (*game.GameState, LoadResult, error) {
	var res LoadResult
	id := c.resolveIdentity(ctx)

	localData, localState, localErr := c.readLocal(ctx, &res)

	wantRemote := id.Authenticated && (force || id.JustLoggedIn || localState == nil)
	if !wantRemote {
		if localErr != nil {
			return nil, res, localErr
		}
		if localState == nil {
			res.Source = SourceDefault
			return nil, res, nil
		}
		res.Source = SourceLocal
		return localState, res, nil
	}

	rec, remoteState, err := c.readRemote(ctx, id, &res)
	if err != nil {
		res.RemoteErr = err
	}

	switch {
	case localErr != nil:
		if remoteState == nil {
			return nil, res, localErr
		}
		// The unreadable local copy may be newer; leave it in place.
		res.Source = SourceRemote
		c.logger.Info("loaded remote snapshot, local unreadable", "last_saved", remoteState.LastSaved)
		return remoteState, res, nil

	case localState == nil && remoteState == nil:
		res.Source = SourceDefault
		return nil, res, nil

	case remoteState == nil:
		res.Source = SourceLocal
		if err == nil {
			// Remote has no usable copy: seed it from local.
			c.pushRemote(ctx, id, localData, localState.LastSaved, &res)
		}
		return localState, res, nil

	case localState == nil || remoteState.LastSaved > localState.LastSaved:
		res.Source = SourceRemote
		if err := c.local.Set(ctx, SnapshotKey, rec.Data); err != nil {
			c.logger.Error("failed to write remote snapshot back to local store", "error", err)
		}
		c.logger.Info("loaded remote snapshot", "last_saved", remoteState.LastSaved)
		return remoteState, res, nil

	default:
		res.Source = SourceLocal
		if localState.LastSaved > remoteState.LastSaved {
			c.pushRemote(ctx, id, localData, localState.LastSaved, &res)
		}
		return localState, res, nil
	}
}

// readLocal returns the stored snapshot. A store failure is returned as
// an error; a payload that does not decode only sets res.Corrupt.
func (c *Coordinator) readLocal(ctx context.Context, res *LoadResult) ([]byte, *game.GameState, error) {
	data, ok, err := c.local.Get(ctx, SnapshotKey)
	if err != nil {
		c.logger.Error("failed to read local snapshot", "error", err)
		return nil, nil, fmt.Errorf("read local snapshot: %w", err)
	}
	if !ok {
		return nil, nil, nil
	}
	s, err := c.catalog.Decode(data)
	if err != nil {
		c.logger.Warn("local snapshot corrupt, ignoring", "error", err)
		res.Corrupt = true
		return nil, nil, nil
	}
	return data, s, nil
}

func (c *Coordinator) readRemote(ctx context.Context, id Identity, res *LoadResult) (*remote.Record, *game.GameState, error) {
	rctx, cancel := context.WithTimeout(ctx, c.remoteTimeout)
	defer cancel()

	rec, err := c.remote.Fetch(rctx, id.UserID)
	if err != nil {
		c.logger.Warn("remote fetch failed", "user", id.UserID, "error", err)
		return nil, nil, &RemoteError{Op: "fetch", Err: err}
	}
	if rec == nil {
		return nil, nil, nil
	}
	c.rowID = rec.RowID

	s, err := c.catalog.Decode(rec.Data)
	if err != nil {
		c.logger.Warn("remote snapshot corrupt, ignoring", "user", id.UserID, "error", err)
		res.Corrupt = true
		return nil, nil, nil
	}
	return rec, s, nil
}

func (c *Coordinator) pushRemote(ctx context.Context, id Identity, data []byte, lastSaved int64, res *LoadResult) {
	if err := c.upsert(ctx, id, data, lastSaved); err != nil {
		res.RemoteErr = err
	}
}

func (c *Coordinator) upsert(ctx context.Context, id Identity, data []byte, lastSaved int64) error {
	rctx, cancel := context.WithTimeout(ctx, c.remoteTimeout)
	defer cancel()

	rec, err := c.remote.Upsert(rctx, remote.Record{
		RowID:     c.rowID,
		UserID:    id.UserID,
		Data:      data,
		LastSaved: lastSaved,
	})
	if err != nil {
		c.logger.Warn("remote upsert failed", "user", id.UserID, "error", err)
		return &RemoteError{Op: "upsert", Err: err}
	}
	c.rowID = rec.RowID
	return nil
}

// Save writes s with a fresh lastSaved and an incremented version. The
// local write always happens; its failure is the only error returned. The
// remote write happens when force is set, s needs a cloud save, or s has
// prestige progress, and the player is authenticated.
func (c *Coordinator) Save(ctx context.Context, s *game.GameState, force bool) (SaveResult, error) {
	if s == nil {
		return SaveResult{}, errors.New("save: nil state")
	}

	snap := *s
	snap.LastSaved = max(c.now().UnixMilli(), s.LastSaved+1)
	snap.Version = s.Version + 1

	data, err := game.EncodeSnapshot(&snap)
	if err != nil {
		return SaveResult{}, err
	}
	if err := c.local.Set(ctx, SnapshotKey, data); err != nil {
		return SaveResult{}, fmt.Errorf("local save: %w", err)
	}

	res := SaveResult{LastSaved: snap.LastSaved, Version: snap.Version}
	if c.remote == nil || !(force || s.NeedsCloudSave || s.HasPrestigeProgress()) {
		return res, nil
	}

	id := c.resolveIdentity(ctx)
	if !id.Authenticated {
		return res, nil
	}
	if err := c.upsert(ctx, id, data, snap.LastSaved); err != nil {
		res.RemoteErr = err
		return res, nil
	}
	res.Remote = true
	return res, nil
}

// SyncResult describes a completed force-sync.
type SyncResult struct {
	SaveResult
	// Updated is true when the remote copy was strictly newer and is
	// returned for loading.
	Updated bool
}

// Message returns a one-line summary for the player.
func (r SyncResult) Message() string {
	switch {
	case r.Updated:
		return "loaded newer cloud save"
	case r.RemoteErr != nil:
		return r.Notice()
	default:
		return "already up to date"
	}
}

// ForceSync saves s (forcing the remote write), then fetches the remote
// copy and returns it only if it is strictly newer than what was just
// saved. A nil state with a nil error means already up to date.
func (c *Coordinator) ForceSync(ctx context.Context, s *game.GameState) (*game.GameState, SyncResult, error) {
	saved, err := c.Save(ctx, s, true)
	if err != nil {
		return nil, SyncResult{}, err
	}
	res := SyncResult{SaveResult: saved}

	id := c.resolveIdentity(ctx)
	if !id.Authenticated {
		return nil, res, nil
	}

	var lr LoadResult
	rec, remoteState, err := c.readRemote(ctx, id, &lr)
	if err != nil {
		if res.RemoteErr == nil {
			res.RemoteErr = err
		}
		return nil, res, nil
	}
	if remoteState == nil || remoteState.LastSaved <= saved.LastSaved {
		return nil, res, nil
	}

	if err := c.local.Set(ctx, SnapshotKey, rec.Data); err != nil {
		c.logger.Error("failed to write remote snapshot back to local store", "error", err)
	}
	res.Updated = true
	return remoteState, res, nil
}

// Reset deletes the local snapshot and, when authenticated, the remote one.
func (c *Coordinator) Reset(ctx context.Context) error {
	if err := c.local.Remove(ctx, SnapshotKey); err != nil {
		return fmt.Errorf("reset local: %w", err)
	}
	id := c.resolveIdentity(ctx)
	if !id.Authenticated {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, c.remoteTimeout)
	defer cancel()
	if err := c.remote.Delete(rctx, id.UserID); err != nil {
		return &RemoteError{Op: "delete", Err: err}
	}
	c.rowID = ""
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/minerush/internal/catalog"
	"github.com/roach88/minerush/internal/config"
	"github.com/roach88/minerush/internal/engine"
	"github.com/roach88/minerush/internal/persist"
	"github.com/roach88/minerush/internal/remote"
	"github.com/roach88/minerush/internal/rules"
	"github.com/roach88/minerush/internal/store"
)

// session is the storage a command works against: configuration, the
// local save database, the optional remote store and the coordinator
// reconciling them.
type session struct {
	cfg     config.Config
	catalog *catalog.Catalog
	local   *store.Store
	remote  *remote.Store
	coord   *persist.Coordinator
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.User != "" {
		cfg.User = opts.User
	}
	return cfg, nil
}

// loadCatalog returns the configured catalog, or the embedded one.
func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if path := cfg.CatalogPath(); path != "" {
		return catalog.Load(path)
	}
	return catalog.Default(), nil
}

// openSession loads configuration and opens every configured store. The
// returned errors are ExitErrors ready to return from a command.
func openSession(opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create data directory", err)
	}

	s := &session{cfg: cfg, catalog: cat}

	slog.Debug("opening database", "path", cfg.DatabasePath())
	s.local, err = store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	popts := []persist.Option{
		persist.WithLogger(slog.Default()),
		persist.WithTimeouts(cfg.Timeouts.Identity, cfg.Timeouts.Remote),
	}
	if cfg.Remote.Enabled() {
		slog.Debug("opening remote store", "driver", cfg.Remote.Driver)
		s.remote, err = remote.Open(cfg.Remote.Driver, cfg.Remote.DSN)
		if err != nil {
			_ = s.local.Close()
			return nil, WrapExitError(ExitCommandError, "failed to open remote store", err)
		}
		popts = append(popts,
			persist.WithRemote(s.remote),
			persist.WithIdentity(persist.StaticIdentity{UserID: cfg.User}))
	}
	s.coord = persist.New(cat, s.local, popts...)
	return s, nil
}

// synced reports whether saves will reach the remote store.
func (s *session) synced() bool {
	return s.remote != nil && s.cfg.User != ""
}

// engine builds an engine over the session's coordinator.
func (s *session) engine(opts ...engine.Option) *engine.Engine {
	opts = append([]engine.Option{engine.WithLogger(slog.Default())}, opts...)
	return engine.New(rules.New(s.catalog), s.coord, opts...)
}

// Close closes every open store.
func (s *session) Close() error {
	var errs []error
	if s.remote != nil {
		errs = append(errs, s.remote.Close())
	}
	if err := s.local.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

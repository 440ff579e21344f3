package persist_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minerush/internal/catalog"
	"github.com/roach88/minerush/internal/game"
	"github.com/roach88/minerush/internal/persist"
	"github.com/roach88/minerush/internal/remote"
	"github.com/roach88/minerush/internal/rules"
	"github.com/roach88/minerush/internal/testutil"
)

const user = "user-1"

var epoch = time.UnixMilli(1_700_000_000_000)

type fixture struct {
	coord  *persist.Coordinator
	local  *testutil.MemoryStore
	remote *testutil.MemoryRemote
	clock  *testutil.WallClock
}

func newFixture(t *testing.T, opts ...persist.Option) *fixture {
	t.Helper()
	f := &fixture{
		local:  testutil.NewMemoryStore(),
		remote: testutil.NewMemoryRemote(),
		clock:  testutil.NewWallClock(epoch),
	}
	base := []persist.Option{
		persist.WithRemote(f.remote),
		persist.WithIdentity(persist.StaticIdentity{UserID: user}),
		persist.WithClock(f.clock.Now),
		persist.WithLogger(slog.New(slog.DiscardHandler)),
	}
	f.coord = persist.New(catalog.Default(), f.local, append(base, opts...)...)
	return f
}

// snapshot encodes a default state holding coins, saved at lastSaved.
func snapshot(t *testing.T, coins float64, lastSaved int64) []byte {
	t.Helper()
	s := catalog.Default().NewState()
	s.Coins = coins
	s.TotalCoinsEarned = coins
	s.LastSaved = lastSaved
	data, err := game.EncodeSnapshot(s)
	require.NoError(t, err)
	return data
}

func storedCoins(t *testing.T, data []byte) float64 {
	t.Helper()
	s, err := game.DecodeRaw(data)
	require.NoError(t, err)
	return s.Coins
}

func TestLoad_NothingStored(t *testing.T) {
	f := newFixture(t)

	s, res, err := f.coord.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, persist.SourceDefault, res.Source)
}

func TestLoad_LocalWithoutForceSkipsRemote(t *testing.T) {
	f := newFixture(t)
	f.local.Put(persist.SnapshotKey, snapshot(t, 10, 1000))
	f.remote.Put(remote.Record{UserID: user, Data: snapshot(t, 99, 5000), LastSaved: 5000})

	s, res, err := f.coord.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, persist.SourceLocal, res.Source)
	assert.Equal(t, 10.0, s.Coins)
}

func TestLoad_ForcedRemoteNewerWinsAndUpdatesLocal(t *testing.T) {
	f := newFixture(t)
	f.local.Put(persist.SnapshotKey, snapshot(t, 10, 1000))
	f.remote.Put(remote.Record{UserID: user, Data: snapshot(t, 99, 2000), LastSaved: 2000})

	s, res, err := f.coord.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, persist.SourceRemote, res.Source)
	assert.Equal(t, 99.0, s.Coins)
	assert.Equal(t, int64(2000), s.LastSaved)

	data, ok, err := f.local.Get(context.Background(), persist.SnapshotKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 99.0, storedCoins(t, data))
}

func TestLoad_ForcedLocalNewerWinsAndUpdatesRemote(t *testing.T) {
	f := newFixture(t)
	f.local.Put(persist.SnapshotKey, snapshot(t, 10, 3000))
	f.remote.Put(remote.Record{UserID: user, Data: snapshot(t, 99, 2000), LastSaved: 2000})

	s, res, err := f.coord.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, persist.SourceLocal, res.Source)
	assert.Equal(t, 10.0, s.Coins)

	rec, ok := f.remote.Record(user)
	require.True(t, ok)
	assert.Equal(t, int64(3000), rec.LastSaved)
	assert.Equal(t, 10.0, storedCoins(t, rec.Data))
	assert.Equal(t, "row-1", rec.RowID, "write-back keeps the server row id")
}

func TestLoad_NoLocalReadsRemote(t *testing.T) {
	f := newFixture(t)
	f.remote.Put(remote.Record{UserID: user, Data: snapshot(t, 42, 2000), LastSaved: 2000})

	s, res, err := f.coord.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, persist.SourceRemote, res.Source)
	assert.Equal(t, 42.0, s.Coins)
	assert.Equal(t, 1, f.local.Writes)
}

func TestLoad_JustLoggedInReadsRemote(t *testing.T) {
	f := newFixture(t, persist.WithIdentity(persist.StaticIdentity{UserID: user, JustLoggedIn: true}))
	f.local.Put(persist.SnapshotKey, snapshot(t, 10, 1000))
	f.remote.Put(remote.Record{UserID: user, Data: snapshot(t, 99, 2000), LastSaved: 2000})

	s, _, err := f.coord.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 99.0, s.Coins)
}

func TestLoad_CorruptLocalFallsBackToDefault(t *testing.T) {
	f := newFixture(t, persist.WithIdentity(nil))
	f.local.Put(persist.SnapshotKey, []byte(`{"coins": "a lot"`))

	s, res, err := f.coord.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.True(t, res.Corrupt)
	assert.Equal(t, persist.SourceDefault, res.Source)
}

func TestLoad_CorruptLocalUsesRemote(t *testing.T) {
	f := newFixture(t)
	f.local.Put(persist.SnapshotKey, []byte(`garbage`))
	f.remote.Put(remote.Record{UserID: user, Data: snapshot(t, 7, 2000), LastSaved: 2000})

	s, res, err := f.coord.Load(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, res.Corrupt)
	assert.Equal(t, 7.0, s.Coins)
}

func TestLoad_LocalReadErrorIsReturned(t *testing.T) {
	f := newFixture(t, persist.WithIdentity(nil))
	f.local.Put(persist.SnapshotKey, snapshot(t, 12345, 1000))
	f.local.GetErr = errors.New("database is locked")

	s, res, err := f.coord.Load(context.Background(), false)
	require.Error(t, err)
	assert.ErrorContains(t, err, "database is locked")
	assert.Nil(t, s)
	assert.False(t, res.Corrupt, "a store failure is not a corrupt payload")
	assert.Zero(t, f.local.Writes)
}

func TestLoad_LocalReadErrorUsesRemoteWithoutWriteBack(t *testing.T) {
	f := newFixture(t)
	f.local.Put(persist.SnapshotKey, snapshot(t, 12345, 5000))
	f.local.GetErr = errors.New("database is locked")
	f.remote.Put(remote.Record{UserID: user, Data: snapshot(t, 7, 2000), LastSaved: 2000})

	s, res, err := f.coord.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, persist.SourceRemote, res.Source)
	assert.Equal(t, 7.0, s.Coins)
	assert.Zero(t, f.local.Writes, "the unreadable local copy is left alone")

	rec, ok := f.remote.Record(user)
	require.True(t, ok)
	assert.Equal(t, 7.0, storedCoins(t, rec.Data))
}

func TestLoad_LocalReadErrorAndRemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.local.GetErr = errors.New("database is locked")
	f.remote.FetchErr = errors.New("network unreachable")

	s, res, err := f.coord.Load(context.Background(), true)
	require.Error(t, err)
	assert.ErrorContains(t, err, "database is locked")
	assert.Nil(t, s)
	assert.True(t, persist.IsRemoteError(res.RemoteErr))
}

func TestLoad_IdentityTimeoutRunsLocalOnly(t *testing.T) {
	f := newFixture(t,
		persist.WithIdentity(testutil.BlockingIdentity),
		persist.WithTimeouts(20*time.Millisecond, time.Second),
	)
	f.remote.Put(remote.Record{UserID: user, Data: snapshot(t, 99, 2000), LastSaved: 2000})

	start := time.Now()
	s, res, err := f.coord.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Nil(t, s)
	assert.Equal(t, persist.SourceDefault, res.Source)
}

func TestLoad_RemoteFailureIsRecoverable(t *testing.T) {
	f := newFixture(t)
	f.local.Put(persist.SnapshotKey, snapshot(t, 10, 1000))
	f.remote.FetchErr = errors.New("network unreachable")

	s, res, err := f.coord.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.Coins)
	assert.True(t, persist.IsRemoteError(res.RemoteErr))
	assert.ErrorContains(t, res.RemoteErr, "network unreachable")
}

func TestLoad_RemoteTimeout(t *testing.T) {
	f := newFixture(t, persist.WithTimeouts(time.Second, 20*time.Millisecond))
	f.remote.Delay = 5 * time.Second

	s, res, err := f.coord.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, res.RemoteErr, context.DeadlineExceeded)
}

func TestSave_StampsAndWritesLocal(t *testing.T) {
	f := newFixture(t)
	s := catalog.Default().NewState()
	s.Coins = 5
	s.Version = 3

	res, err := f.coord.Save(context.Background(), s, false)
	require.NoError(t, err)
	assert.Equal(t, epoch.UnixMilli(), res.LastSaved)
	assert.Equal(t, int64(4), res.Version)
	assert.False(t, res.Remote, "light save stays local")
	assert.Zero(t, f.remote.Upserts)
	assert.Equal(t, int64(3), s.Version, "input is not modified")

	data, ok, _ := f.local.Get(context.Background(), persist.SnapshotKey)
	require.True(t, ok)
	saved, err := game.DecodeRaw(data)
	require.NoError(t, err)
	assert.Equal(t, res.LastSaved, saved.LastSaved)
	assert.Equal(t, res.Version, saved.Version)
}

func TestSave_RemoteWriteConditions(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *game.GameState)
		force  bool
		remote bool
	}{
		{name: "light", setup: func(*game.GameState) {}, remote: false},
		{name: "forced", setup: func(*game.GameState) {}, force: true, remote: true},
		{name: "significant", setup: func(s *game.GameState) { s.NeedsCloudSave = true }, remote: true},
		{name: "prestige", setup: func(s *game.GameState) { s.GoldCoins = 3 }, remote: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := catalog.Default().NewState()
			tt.setup(s)

			res, err := f.coord.Save(context.Background(), s, tt.force)
			require.NoError(t, err)
			assert.Equal(t, tt.remote, res.Remote)
			_, stored := f.remote.Record(user)
			assert.Equal(t, tt.remote, stored)
		})
	}
}

func TestSave_UnauthenticatedStaysLocal(t *testing.T) {
	f := newFixture(t, persist.WithIdentity(persist.StaticIdentity{}))

	res, err := f.coord.Save(context.Background(), catalog.Default().NewState(), true)
	require.NoError(t, err)
	assert.False(t, res.Remote)
	assert.Zero(t, f.remote.Upserts)
}

func TestSave_RemoteFailureKeepsLocal(t *testing.T) {
	f := newFixture(t)
	f.remote.UpsertErr = errors.New("permission denied")

	res, err := f.coord.Save(context.Background(), catalog.Default().NewState(), true)
	require.NoError(t, err)
	assert.False(t, res.Remote)
	require.Error(t, res.RemoteErr)
	assert.Contains(t, res.Notice(), "permission denied")
	assert.Equal(t, 1, f.local.Writes)
}

func TestSave_LocalFailureIsAnError(t *testing.T) {
	f := newFixture(t)
	f.local.Err = errors.New("disk full")

	_, err := f.coord.Save(context.Background(), catalog.Default().NewState(), true)
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, f.remote.Upserts, "remote is not written when local fails")
}

func TestSave_LastSavedMonotonic(t *testing.T) {
	f := newFixture(t)
	s := catalog.Default().NewState()
	s.LastSaved = epoch.Add(time.Hour).UnixMilli() // saved by a clock running ahead

	res, err := f.coord.Save(context.Background(), s, false)
	require.NoError(t, err)
	assert.Equal(t, s.LastSaved+1, res.LastSaved)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	cat := catalog.Default()
	r := rules.New(cat)
	s, _ := r.Reduce(nil, game.Load{State: r.Initial()})
	s.Coins = 20000
	s.TotalCoinsEarned = 20000
	s.GoldCoins = 50

	for _, a := range []game.Action{
		game.BuyAutoMiner{ID: "helper"},
		game.BuyAutoMiner{ID: "helper"},
		game.BuyAutoMiner{ID: "helper"},
		game.BuyUpgrade{ID: "stone_pickaxe"},
		game.SelectRock{ID: "copper"},
		game.BuySpecialUpgrade{ID: "power_core"},
		game.BuySpecialUpgrade{ID: "power_core"},
		game.EvolveUpgrade{ID: "stone_pickaxe"},
		game.BuyAbility{ID: "click_frenzy"},
		game.ActivateAbility{ID: "click_frenzy"},
		game.TickAbilities{Seconds: 5},
		game.UpgradeAbility{ID: "click_frenzy"},
		game.Click{},
		game.Click{},
		game.Click{},
		game.SetSetting{Setting: game.SettingHaptics, Enabled: false},
	} {
		n, _ := r.Reduce(s, a)
		require.NotSame(t, s, n, "action %s rejected", a.Name())
		s = n
	}

	f := newFixture(t)
	_, err := f.coord.Save(context.Background(), s, false)
	require.NoError(t, err)
	loaded, _, err := f.coord.Load(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	want, _ := r.Reduce(nil, game.Load{State: s})
	got, _ := r.Reduce(nil, game.Load{State: loaded})
	want.LastSaved, want.Version = 0, 0
	got.LastSaved, got.Version = 0, 0
	assert.Equal(t, want, got)
}

func TestForceSync_AlreadyUpToDate(t *testing.T) {
	f := newFixture(t)

	s, res, err := f.coord.ForceSync(context.Background(), catalog.Default().NewState())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.True(t, res.Remote)
	assert.False(t, res.Updated)
	assert.Equal(t, "already up to date", res.Message())
}

func TestForceSync_LoadsStrictlyNewerRemote(t *testing.T) {
	f := newFixture(t)
	// Another device saved "in the future" and our upload is refused.
	future := epoch.Add(time.Hour).UnixMilli()
	f.remote.Put(remote.Record{UserID: user, Data: snapshot(t, 777, future), LastSaved: future})
	f.remote.UpsertErr = errors.New("conflict")

	s, res, err := f.coord.ForceSync(context.Background(), catalog.Default().NewState())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, res.Updated)
	assert.Equal(t, 777.0, s.Coins)
	assert.Equal(t, "loaded newer cloud save", res.Message())

	data, _, _ := f.local.Get(context.Background(), persist.SnapshotKey)
	assert.Equal(t, 777.0, storedCoins(t, data))
}

func TestForceSync_LocalOnly(t *testing.T) {
	f := newFixture(t, persist.WithIdentity(nil))

	s, res, err := f.coord.ForceSync(context.Background(), catalog.Default().NewState())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.False(t, res.Remote)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.coord.Save(ctx, catalog.Default().NewState(), true)
	require.NoError(t, err)

	require.NoError(t, f.coord.Reset(ctx))

	_, ok, _ := f.local.Get(ctx, persist.SnapshotKey)
	assert.False(t, ok)
	_, ok = f.remote.Record(user)
	assert.False(t, ok)
}

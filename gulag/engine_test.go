package gulag

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	mu        sync.Mutex
	roles     map[string][]string // key guild:user
	failFetch map[string]bool     // keys whose member fetch fails
	failRoles map[string]bool     // role ids whose add/remove fails
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		roles:     make(map[string][]string),
		failFetch: make(map[string]bool),
		failRoles: make(map[string]bool),
	}
}

func (f *fakePlatform) setRoles(guildID, userID string, roles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[sanctionKey(guildID, userID)] = roles
}

func (f *fakePlatform) getRoles(guildID, userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.roles[sanctionKey(guildID, userID)]...)
}

func (f *fakePlatform) MemberRoles(guildID, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := sanctionKey(guildID, userID)
	if f.failFetch[key] {
		return nil, errors.New("unknown member")
	}
	return append([]string{}, f.roles[key]...), nil
}

func (f *fakePlatform) AddRole(guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failRoles[roleID] {
		return errors.New("missing permissions")
	}

	key := sanctionKey(guildID, userID)
	for _, r := range f.roles[key] {
		if r == roleID {
			return nil
		}
	}
	f.roles[key] = append(f.roles[key], roleID)
	return nil
}

func (f *fakePlatform) RemoveRole(guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failRoles[roleID] {
		return errors.New("missing permissions")
	}

	key := sanctionKey(guildID, userID)
	filtered := make([]string, 0, len(f.roles[key]))
	for _, r := range f.roles[key] {
		if r != roleID {
			filtered = append(filtered, r)
		}
	}
	f.roles[key] = filtered
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	channel  []string
	direct   []string
	channels []string
}

func (f *fakeNotifier) SendChannel(channelID, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channelID)
	f.channel = append(f.channel, content)
}

func (f *fakeNotifier) SendDirect(userID, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, content)
}

func testConfig() *Config {
	return &Config{
		PrisonerRole:           "prisoner",
		GulagChannel:           "cells",
		LogChannel:             "modlog",
		DefaultDurationSeconds: 3600,
		MinDurationSeconds:     300,
		MaxDurationSeconds:     2592000,
		Messages: ConfigMessages{
			Imprisoned: "{user} imprisoned for {duration}: {reason}",
			Released:   "{user} released",
			Welcome:    "welcome {user}",
		},
	}
}

type testEnv struct {
	manager  *Manager
	store    *SanctionStore
	sched    *Scheduler
	platform *fakePlatform
	notifier *fakeNotifier
	conf     *Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := OpenSanctionStore(filepath.Join(t.TempDir(), "sanctions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store:    store,
		sched:    NewScheduler(logrus.NewEntry(logrus.New())),
		platform: newFakePlatform(),
		notifier: &fakeNotifier{},
		conf:     testConfig(),
	}
	t.Cleanup(env.sched.StopAll)

	env.manager = NewManager(store, env.sched, env.platform, env.notifier,
		func() *Config { return env.conf },
		func() []string { return []string{"verified"} })

	return env
}

func TestImposeEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u", "roleA", "roleB")

	before := time.Now()
	result, err := env.manager.Impose("g", "u", "1h", "spamming")
	require.NoError(t, err)

	assert.Equal(t, time.Hour, result.AppliedDuration)
	assert.WithinDuration(t, before.Add(time.Hour), result.EndTime, 2*time.Second)

	// roles swapped for the prisoner role
	assert.Equal(t, []string{"prisoner"}, env.platform.getRoles("g", "u"))

	// record persisted with the pre-sanction snapshot
	all, err := env.store.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"roleA", "roleB"}, all[0].OriginalRoles)
	assert.Equal(t, "spamming", all[0].Reason)
	assert.Equal(t, all[0].StartTime+3600*1000, all[0].EndTime)

	assert.True(t, env.sched.Pending("g", "u"))
}

func TestImposeClampsShortDuration(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u")

	result, err := env.manager.Impose("g", "u", "10s", "")
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, result.AppliedDuration)
}

func TestImposeClampsLongDuration(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u")

	result, err := env.manager.Impose("g", "u", "100w", "")
	require.NoError(t, err)
	assert.Equal(t, 2592000*time.Second, result.AppliedDuration)
}

func TestImposeMalformedDurationUsesDefault(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u")

	result, err := env.manager.Impose("g", "u", "abc", "")
	require.NoError(t, err)
	assert.Equal(t, 3600*time.Second, result.AppliedDuration)
}

func TestImposeDefaultReason(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u")

	_, err := env.manager.Impose("g", "u", "", "  ")
	require.NoError(t, err)

	all, err := env.store.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, DefaultReason, all[0].Reason)
}

func TestImposeReplacesExistingSanction(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u", "roleA", "roleB")

	_, err := env.manager.Impose("g", "u", "1h", "first")
	require.NoError(t, err)

	second, err := env.manager.Impose("g", "u", "2h", "second")
	require.NoError(t, err)

	all, err := env.store.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Reason)
	assert.Equal(t, second.EndTime.UnixMilli(), all[0].EndTime)

	// the original snapshot survives the re-impose even though the member
	// only holds the prisoner role by now
	assert.ElementsMatch(t, []string{"roleA", "roleB"}, all[0].OriginalRoles)

	assert.True(t, env.sched.Pending("g", "u"))
}

func TestImposeRoleFailureDoesNotAbort(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u", "roleA", "roleB")
	env.platform.failRoles["roleA"] = true

	_, err := env.manager.Impose("g", "u", "1h", "")
	require.NoError(t, err)

	// the snapshot still carries the role that could not be removed
	all, err := env.store.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.ElementsMatch(t, []string{"roleA", "roleB"}, all[0].OriginalRoles)
	assert.True(t, env.sched.Pending("g", "u"))
}

func TestImposePersistFailure(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u")

	require.NoError(t, env.store.Close())

	_, err := env.manager.Impose("g", "u", "1h", "")
	require.Error(t, err)

	// a sanction that was not recorded must not have a timer
	assert.False(t, env.sched.Pending("g", "u"))
}

func TestLiftRestoresSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u", "roleA", "roleB")

	_, err := env.manager.Impose("g", "u", "1h", "")
	require.NoError(t, err)

	result, err := env.manager.Lift("g", "u", true)
	require.NoError(t, err)
	assert.False(t, result.AlreadyLifted)
	assert.ElementsMatch(t, []string{"roleA", "roleB"}, result.RestoredRoles)

	roles := env.platform.getRoles("g", "u")
	assert.ElementsMatch(t, []string{"roleA", "roleB"}, roles)
	assert.NotContains(t, roles, "prisoner")

	exists, err := env.store.Exists("g", "u")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.False(t, env.sched.Pending("g", "u"))
}

func TestLiftIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u")

	_, err := env.manager.Impose("g", "u", "1h", "")
	require.NoError(t, err)

	first, err := env.manager.Lift("g", "u", true)
	require.NoError(t, err)
	assert.False(t, first.AlreadyLifted)

	second, err := env.manager.Lift("g", "u", true)
	require.NoError(t, err)
	assert.True(t, second.AlreadyLifted)

	all, err := env.store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLiftEmptySnapshotGrantsFallback(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u")

	_, err := env.manager.Impose("g", "u", "1h", "")
	require.NoError(t, err)

	result, err := env.manager.Lift("g", "u", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"verified"}, result.RestoredRoles)
	assert.ElementsMatch(t, []string{"verified"}, env.platform.getRoles("g", "u"))
}

func TestLiftMemberGoneStillClearsRecord(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u", "roleA")

	_, err := env.manager.Impose("g", "u", "1h", "")
	require.NoError(t, err)

	env.platform.failFetch[sanctionKey("g", "u")] = true

	result, err := env.manager.Lift("g", "u", false)
	require.NoError(t, err)
	assert.Empty(t, result.RestoredRoles)

	exists, err := env.store.Exists("g", "u")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAutomaticRelease(t *testing.T) {
	env := newTestEnv(t)
	env.conf.MinDurationSeconds = 0
	env.platform.setRoles("g", "u", "roleA")

	_, err := env.manager.Impose("g", "u", "0s", "")
	require.NoError(t, err)

	waitFor(t, func() bool {
		exists, _ := env.store.Exists("g", "u")
		return !exists
	}, "sanction was not auto released")

	waitFor(t, func() bool {
		roles := env.platform.getRoles("g", "u")
		return len(roles) == 1 && roles[0] == "roleA"
	}, "roles were not restored on auto release")
}

func TestIsQuarantined(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u")

	assert.False(t, env.manager.IsQuarantined("g", "u"))

	_, err := env.manager.Impose("g", "u", "1h", "")
	require.NoError(t, err)
	assert.True(t, env.manager.IsQuarantined("g", "u"))

	_, err = env.manager.Lift("g", "u", true)
	require.NoError(t, err)
	assert.False(t, env.manager.IsQuarantined("g", "u"))
}

func TestStaleReleaseDoesNotCutReplacementShort(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u", "roleA")

	_, err := env.manager.Impose("g", "u", "5m", "first")
	require.NoError(t, err)

	_, err = env.manager.Impose("g", "u", "2h", "second")
	require.NoError(t, err)

	// a replaced timer whose callback was already queued can still fire; the
	// record's end time is far in the future so nothing may be released
	env.manager.autoRelease("g", "u")

	exists, err := env.store.Exists("g", "u")
	require.NoError(t, err)
	assert.True(t, exists, "active sanction must survive a stale fire")
	assert.True(t, env.sched.Pending("g", "u"))
	assert.Equal(t, []string{"prisoner"}, env.platform.getRoles("g", "u"))
}

func TestRestoreActiveReleasesExpired(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u", "prisoner")

	now := time.Now().UnixMilli()
	require.NoError(t, env.store.Upsert(&SanctionRecord{
		GuildID:       "g",
		UserID:        "u",
		OriginalRoles: []string{"roleA"},
		StartTime:     now - 10000,
		EndTime:       now - 5000,
		Reason:        "expired while offline",
	}))

	require.NoError(t, env.manager.RestoreActive())

	exists, err := env.store.Exists("g", "u")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.False(t, env.sched.Pending("g", "u"))
	assert.ElementsMatch(t, []string{"roleA"}, env.platform.getRoles("g", "u"))
}

func TestRestoreActiveRearmsFuture(t *testing.T) {
	env := newTestEnv(t)

	// capture the delays the scheduler is armed with
	var armedDelays []time.Duration
	env.sched.afterFunc = func(d time.Duration, f func()) *time.Timer {
		armedDelays = append(armedDelays, d)
		return time.AfterFunc(time.Hour, f)
	}

	now := time.Now().UnixMilli()
	require.NoError(t, env.store.Upsert(&SanctionRecord{
		GuildID:   "g",
		UserID:    "u",
		StartTime: now,
		EndTime:   now + 10*60*1000,
	}))

	require.NoError(t, env.manager.RestoreActive())

	assert.True(t, env.sched.Pending("g", "u"))
	require.Len(t, armedDelays, 1)
	assert.InDelta(t, (10 * time.Minute).Seconds(), armedDelays[0].Seconds(), 2)

	exists, err := env.store.Exists("g", "u")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNotificationsSent(t *testing.T) {
	env := newTestEnv(t)
	env.platform.setRoles("g", "u", "roleA")

	_, err := env.manager.Impose("g", "u", "1h", "test reason")
	require.NoError(t, err)

	env.notifier.mu.Lock()
	assert.Contains(t, env.notifier.channels, "modlog")
	assert.Contains(t, env.notifier.channels, "cells")
	assert.NotEmpty(t, env.notifier.direct)
	env.notifier.mu.Unlock()
}

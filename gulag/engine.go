package gulag

import (
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/gulagbot/gulagbot/common"
)

// RolePlatform is the narrow slice of the chat platform the engine touches.
// The everyone-role is never part of a member's role list.
type RolePlatform interface {
	MemberRoles(guildID, userID string) ([]string, error)
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
}

// Notifier sends best-effort messages, failures never propagate.
type Notifier interface {
	SendChannel(channelID, content string)
	SendDirect(userID, content string)
}

// Manager orchestrates imposing and lifting sanctions: role mutation, store
// mutation, timer registration and notifications.
type Manager struct {
	store    *SanctionStore
	sched    *Scheduler
	platform RolePlatform
	notifier Notifier

	getConfig func() *Config
	// roles granted on release when the record has no snapshot
	fallbackRoles func() []string

	locks *keyLock
	now   func() time.Time
}

func NewManager(store *SanctionStore, sched *Scheduler, platform RolePlatform, notifier Notifier, getConfig func() *Config, fallbackRoles func() []string) *Manager {
	return &Manager{
		store:         store,
		sched:         sched,
		platform:      platform,
		notifier:      notifier,
		getConfig:     getConfig,
		fallbackRoles: fallbackRoles,
		locks:         newKeyLock(),
		now:           time.Now,
	}
}

type ImposeResult struct {
	EndTime         time.Time
	AppliedDuration time.Duration
}

type LiftResult struct {
	// AlreadyLifted is set when no record existed, lifting twice is fine
	AlreadyLifted bool
	RestoredRoles []string
}

const DefaultReason = "No reason provided"

// Impose quarantines the user: strips their roles, applies the prisoner
// role, persists the sanction and arms the release timer. Re-imposing on an
// already quarantined user replaces the old sanction.
//
// Individual role mutations are best-effort, only a failed store write makes
// the whole operation fail.
func (m *Manager) Impose(guildID, userID, durationText, reason string) (*ImposeResult, error) {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultReason
	}

	conf := m.getConfig()
	seconds := ClampDuration(
		ParseDuration(durationText, conf.DefaultDurationSeconds),
		conf.MinDurationSeconds, conf.MaxDurationSeconds)

	key := sanctionKey(guildID, userID)
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	currentRoles, err := m.platform.MemberRoles(guildID, userID)
	if err != nil {
		return nil, errors.WithMessage(err, "failed fetching member roles")
	}

	held := common.FilterStringSlice(common.FilterStringSlice(currentRoles, guildID), conf.PrisonerRole)
	snapshot := append([]string{}, held...)

	// a re-impose sees the prison state as current roles, so carry over the
	// previous snapshot for anything not captured now
	if existing := m.findRecord(guildID, userID); existing != nil {
	OUTER:
		for _, prev := range existing.OriginalRoles {
			for _, cur := range snapshot {
				if prev == cur {
					continue OUTER
				}
			}
			snapshot = append(snapshot, prev)
		}
	}

	for _, r := range held {
		if err := m.platform.RemoveRole(guildID, userID, r); err != nil {
			logger.WithError(err).WithField("guild", guildID).WithField("role", r).Warn("failed removing role, continuing")
		}
	}

	if conf.PrisonerRole != "" && !common.ContainsStringSlice(currentRoles, conf.PrisonerRole) {
		if err := m.platform.AddRole(guildID, userID, conf.PrisonerRole); err != nil {
			logger.WithError(err).WithField("guild", guildID).Warn("failed applying the prisoner role, continuing")
		}
	}

	now := m.now()
	endTime := now.Add(time.Duration(seconds) * time.Second)

	record := &SanctionRecord{
		GuildID:       guildID,
		UserID:        userID,
		OriginalRoles: snapshot,
		StartTime:     now.UnixMilli(),
		EndTime:       endTime.UnixMilli(),
		Reason:        reason,
	}

	// persist before arming, a sanction the store doesn't know about must
	// not have a timer either
	if err := m.store.Upsert(record); err != nil {
		return nil, errors.WithMessage(err, "failed persisting the sanction")
	}

	m.sched.Arm(guildID, userID, time.Duration(seconds)*time.Second, func() {
		m.autoRelease(guildID, userID)
	})

	m.notifyImposed(conf, userID, reason, seconds)

	return &ImposeResult{
		EndTime:         endTime,
		AppliedDuration: time.Duration(seconds) * time.Second,
	}, nil
}

// Lift releases the user: removes the prisoner role, deletes the record,
// cancels the timer and restores the snapshotted roles. Lifting a user who
// is not quarantined is an idempotent no-op. A user who already left the
// guild still gets their record cleared.
func (m *Manager) Lift(guildID, userID string, manual bool) (*LiftResult, error) {
	conf := m.getConfig()

	key := sanctionKey(guildID, userID)
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	_, fetchErr := m.platform.MemberRoles(guildID, userID)
	memberGone := fetchErr != nil
	if memberGone {
		logger.WithError(fetchErr).WithField("guild", guildID).WithField("user", userID).Info("member gone, skipping role operations on release")
	}

	if !memberGone && conf.PrisonerRole != "" {
		if err := m.platform.RemoveRole(guildID, userID, conf.PrisonerRole); err != nil {
			logger.WithError(err).WithField("guild", guildID).Warn("failed removing the prisoner role, continuing")
		}
	}

	removed, err := m.store.Remove(guildID, userID)
	if err != nil {
		return nil, errors.WithMessage(err, "failed removing the sanction record")
	}

	m.sched.Cancel(guildID, userID)

	if removed == nil {
		return &LiftResult{AlreadyLifted: true}, nil
	}

	var restored []string
	if !memberGone {
		restoreSet := removed.OriginalRoles
		if len(restoreSet) == 0 {
			restoreSet = m.fallbackRoles()
		}

		for _, r := range restoreSet {
			if r == conf.PrisonerRole || r == guildID {
				continue
			}
			if err := m.platform.AddRole(guildID, userID, r); err != nil {
				logger.WithError(err).WithField("guild", guildID).WithField("role", r).Warn("failed restoring role, continuing")
				continue
			}
			restored = append(restored, r)
		}
	}

	m.notifyLifted(conf, userID, manual)

	return &LiftResult{RestoredRoles: restored}, nil
}

// IsQuarantined reports whether the user currently has an active sanction.
func (m *Manager) IsQuarantined(guildID, userID string) bool {
	exists, err := m.store.Exists(guildID, userID)
	if err != nil {
		logger.WithError(err).Error("failed checking sanction store")
		return false
	}
	return exists
}

func (m *Manager) autoRelease(guildID, userID string) {
	// a timer whose callback was already queued when a re-impose replaced it
	// can still fire; the record's end time is the authority on whether the
	// sanction is actually over
	if rec := m.findRecord(guildID, userID); rec != nil && rec.EndTime > m.now().UnixMilli() {
		logger.WithField("guild", guildID).WithField("user", userID).Info("skipping release, the sanction end moved into the future")
		return
	}

	_, err := m.Lift(guildID, userID, false)
	if err != nil {
		logger.WithError(err).WithField("guild", guildID).WithField("user", userID).Error("automatic release failed")
	}
}

func (m *Manager) findRecord(guildID, userID string) *SanctionRecord {
	all, err := m.store.ListAll()
	if err != nil {
		logger.WithError(err).Error("failed reading sanction store")
		return nil
	}
	for _, v := range all {
		if v.GuildID == guildID && v.UserID == userID {
			return v
		}
	}
	return nil
}

func (m *Manager) notifyImposed(conf *Config, userID, reason string, seconds int) {
	repl := map[string]string{
		"user":     mention(userID),
		"reason":   reason,
		"duration": FormatDuration(seconds),
	}

	if conf.LogChannel != "" {
		m.notifier.SendChannel(conf.LogChannel, formatMessage(conf.Messages.Imprisoned, repl))
	}
	if conf.GulagChannel != "" {
		m.notifier.SendChannel(conf.GulagChannel, formatMessage(conf.Messages.Welcome, repl))
	}

	m.notifier.SendDirect(userID, formatMessage("You have been sent to the gulag for {duration}. Reason: {reason}", repl))
}

func (m *Manager) notifyLifted(conf *Config, userID string, manual bool) {
	repl := map[string]string{"user": mention(userID)}

	msg := formatMessage(conf.Messages.Released, repl)
	if !manual {
		msg += " (sentence served)"
	}

	if conf.LogChannel != "" {
		m.notifier.SendChannel(conf.LogChannel, msg)
	}

	if manual {
		m.notifier.SendDirect(userID, "You have been released from the gulag.")
	} else {
		m.notifier.SendDirect(userID, "You have been released from the gulag, your sentence is served.")
	}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func formatMessage(template string, replacements map[string]string) string {
	out := template
	for k, v := range replacements {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

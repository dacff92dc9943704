package gulag

import (
	"time"
)

// RestoreActive reconciles the scheduler with the store after a restart.
// Records whose deadline passed while the process was down go through the
// normal release path so members get their roles back, the rest re-arm with
// the remaining delay.
func (m *Manager) RestoreActive() error {
	all, err := m.store.ListAll()
	if err != nil {
		return err
	}

	now := m.now().UnixMilli()
	rearmed := 0
	for _, record := range all {
		if record.EndTime <= now {
			logger.WithField("guild", record.GuildID).WithField("user", record.UserID).Info("sanction expired while offline, releasing")
			if _, err := m.Lift(record.GuildID, record.UserID, false); err != nil {
				logger.WithError(err).WithField("guild", record.GuildID).WithField("user", record.UserID).Error("failed releasing expired sanction")
			}
			continue
		}

		guildID, userID := record.GuildID, record.UserID
		remaining := time.Duration(record.EndTime-now) * time.Millisecond
		m.sched.Arm(guildID, userID, remaining, func() {
			m.autoRelease(guildID, userID)
		})
		rearmed++
	}

	logger.Infof("Restored %d active sanctions from the store", rearmed)
	return nil
}

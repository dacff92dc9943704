package automod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/common"
	"github.com/gulagbot/gulagbot/gulag"
	"github.com/gulagbot/gulagbot/moderation"
	"github.com/gulagbot/gulagbot/warnings"
	"github.com/sirupsen/logrus"
)

func (p *Plugin) BotInit() {
	p.tracker = newSpamTracker()
	common.BotSession.AddHandler(p.handleMessageCreate)
}

func (p *Plugin) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if common.BotUser != nil && m.Author.ID == common.BotUser.ID {
		return
	}

	conf := GetConfig()
	if !conf.Enabled {
		return
	}
	if common.ContainsStringSlice(conf.ExcludedChannels, m.ChannelID) {
		return
	}

	if _, ok := findBannedWord(m.Content, conf.BannedWords); ok {
		p.punishMessage(conf, m, "Use of a banned word")
		return
	}

	if checkCaps(m.Content, conf.CapsPercent) {
		p.punishMessage(conf, m, "Excessive use of capital letters")
		return
	}

	key := m.GuildID + ":" + m.Author.ID
	if p.tracker.Observe(key, time.Duration(conf.SpamWindowSeconds)*time.Second, conf.SpamMessages) {
		logAutomod(fmt.Sprintf("Automoderator muted %s for spam", m.Author.Mention()))
		if err := gulag.Quarantine(m.GuildID, m.Author.ID, conf.SpamMuteSeconds, "Automoderator: spam"); err != nil {
			logger.WithError(err).WithField("guild", m.GuildID).Error("failed muting a spammer")
		}
	}
}

// punishMessage deletes the offending message, records a warning and applies
// the escalation the member's warning count calls for.
func (p *Plugin) punishMessage(conf *Config, m *discordgo.MessageCreate, reason string) {
	common.LogIgnoreError(
		common.BotSession.ChannelMessageDelete(m.ChannelID, m.ID),
		"automod: failed deleting the offending message",
		logrus.Fields{"channel": m.ChannelID, "message": m.ID})

	count, err := warnings.AddWarning(m.GuildID, m.Author.ID, "automod", reason)
	if err != nil {
		logger.WithError(err).WithField("guild", m.GuildID).Error("failed recording an automod warning")
		return
	}

	logAutomod(fmt.Sprintf("Automoderator warned %s (#%d): %s", m.Author.Mention(), count, reason))

	if count >= conf.MaxWarnings {
		banReason := fmt.Sprintf("Automoderator: reached %d warnings", conf.MaxWarnings)
		if err := moderation.BanUser(m.GuildID, common.BotUser, m.Author, banReason); err != nil {
			logger.WithError(err).WithField("guild", m.GuildID).Error("failed banning over the warning limit")
		}
		return
	}

	if count <= len(conf.WarningMuteSeconds) {
		if secs := conf.WarningMuteSeconds[count-1]; secs > 0 {
			muteReason := fmt.Sprintf("Automoderator: warning #%d", count)
			if err := gulag.Quarantine(m.GuildID, m.Author.ID, secs, muteReason); err != nil {
				logger.WithError(err).WithField("guild", m.GuildID).Error("failed muting over a warning")
			}
		}
	}
}

// logAutomod posts to the moderation log channel, automod shares it.
func logAutomod(content string) {
	if lc := moderation.GetConfig().LogChannel; lc != "" {
		bot.SendMessage(lc, content)
	}
}

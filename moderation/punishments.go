package moderation

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/common"
)

type punishment int

const (
	punishmentKick punishment = iota
	punishmentBan
)

// punish kicks or bans the target, sending the best-effort DM first since a
// kicked or banned user can no longer be messaged.
func punish(conf *Config, p punishment, guildID string, invoker, target *discordgo.User, reason string, banDeleteDays int) error {
	var action string
	switch p {
	case punishmentKick:
		action = "kicked"
	case punishmentBan:
		action = "banned"
	}

	_ = bot.SendDM(target.ID, fmt.Sprintf("You have been %s.\nReason: %s", action, reason))

	fullReason := invoker.Username + ": " + reason

	var err error
	switch p {
	case punishmentKick:
		err = common.BotSession.GuildMemberDeleteWithReason(guildID, target.ID, fullReason)
	case punishmentBan:
		err = common.BotSession.GuildBanCreateWithReason(guildID, target.ID, fullReason, banDeleteDays)
	}
	if err != nil {
		return err
	}

	logger.WithField("guild", guildID).Infof("MODERATION: %s %s %s cause %q", invoker.Username, action, target.Username, reason)
	logAction(conf, fmt.Sprintf("%s %s %s. Reason: %s", invoker.Mention(), action, target.Mention(), reason))

	return nil
}

// BanUser bans the target on behalf of invoker, for other plugins that hand
// out bans (the automoderator). The invoker may be the bot user itself.
func BanUser(guildID string, invoker, target *discordgo.User, reason string) error {
	conf := GetConfig()
	return punish(conf, punishmentBan, guildID, invoker, target, reason, conf.BanDeleteDays)
}

// logAction posts to the moderation log channel if one is configured.
func logAction(conf *Config, content string) {
	if conf.LogChannel == "" {
		return
	}
	bot.SendMessage(conf.LogChannel, content)
}

// deleteMessages bulk deletes up to num messages in the channel, optionally
// filtered to one author. Messages older than two weeks cannot be bulk
// deleted so they are skipped (with a minute of slack for clock skew).
func deleteMessages(channelID, filterUser string, num int) (int, error) {
	if num > 100 {
		num = 100
	}

	msgs, err := common.BotSession.ChannelMessages(channelID, 100, "", "", "")
	if err != nil {
		return 0, err
	}

	toDelete := make([]string, 0, num)
	now := time.Now()
	for _, msg := range msgs {
		if filterUser != "" && msg.Author.ID != filterUser {
			continue
		}
		if now.Sub(msg.Timestamp) > (time.Hour*24*14)-time.Minute {
			continue
		}

		toDelete = append(toDelete, msg.ID)
		if len(toDelete) >= num {
			break
		}
	}

	switch len(toDelete) {
	case 0:
		return 0, nil
	case 1:
		err = common.BotSession.ChannelMessageDelete(channelID, toDelete[0])
	default:
		err = common.BotSession.ChannelMessagesBulkDelete(channelID, toDelete)
	}

	return len(toDelete), err
}

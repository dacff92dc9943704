package gulag

import (
	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/common"
)

// discordPlatform implements RolePlatform over the live session.
type discordPlatform struct{}

func (discordPlatform) MemberRoles(guildID, userID string) ([]string, error) {
	member, err := bot.GetMember(guildID, userID)
	if err != nil {
		return nil, err
	}
	return member.Roles, nil
}

func (discordPlatform) AddRole(guildID, userID, roleID string) error {
	return common.BotSession.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (discordPlatform) RemoveRole(guildID, userID, roleID string) error {
	return common.BotSession.GuildMemberRoleRemove(guildID, userID, roleID)
}

// discordNotifier implements Notifier over the live session.
type discordNotifier struct{}

func (discordNotifier) SendChannel(channelID, content string) {
	bot.SendMessage(channelID, content)
}

func (discordNotifier) SendDirect(userID, content string) {
	// DMs can be disabled, bot.SendDM already logs
	_ = bot.SendDM(userID, content)
}

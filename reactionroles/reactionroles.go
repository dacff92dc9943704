// Package reactionroles grants and revokes roles based on message reactions.
package reactionroles

import (
	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/common"
	"github.com/gulagbot/gulagbot/common/confdocs"
)

var logger = common.GetPluginLogger(&Plugin{})

var _ bot.BotInitHandler = (*Plugin)(nil)

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Reaction Roles",
		SysName:  "reaction_roles",
		Category: common.PluginCategoryMisc,
	}
}

func RegisterPlugin() {
	p := &Plugin{}
	common.RegisterPlugin(p)
	p.registerCommands()
}

func (p *Plugin) BotInit() {
	common.BotSession.AddHandler(p.handleReactionAdd)
	common.BotSession.AddHandler(p.handleReactionRemove)
}

const confDocName = "reactionroles"

// Mapping binds one emoji on one message to a role.
type Mapping struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	RoleID    string `json:"role_id"`
}

type Config struct {
	Mappings []Mapping `json:"mappings"`
}

func GetConfig() *Config {
	conf := &Config{}
	confdocs.Load(confDocName, conf)
	return conf
}

func SaveConfig(conf *Config) bool {
	return confdocs.Save(confDocName, conf)
}

func findMapping(conf *Config, messageID, emoji string) *Mapping {
	for i := range conf.Mappings {
		m := &conf.Mappings[i]
		if m.MessageID == messageID && m.Emoji == emoji {
			return m
		}
	}
	return nil
}

func (p *Plugin) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID == "" || r.UserID == common.BotUser.ID {
		return
	}

	mapping := findMapping(GetConfig(), r.MessageID, r.Emoji.APIName())
	if mapping == nil {
		return
	}

	if err := s.GuildMemberRoleAdd(r.GuildID, r.UserID, mapping.RoleID); err != nil {
		logger.WithError(err).WithField("guild", r.GuildID).WithField("role", mapping.RoleID).Error("failed granting reaction role")
	}
}

func (p *Plugin) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.GuildID == "" || r.UserID == common.BotUser.ID {
		return
	}

	mapping := findMapping(GetConfig(), r.MessageID, r.Emoji.APIName())
	if mapping == nil {
		return
	}

	if err := s.GuildMemberRoleRemove(r.GuildID, r.UserID, mapping.RoleID); err != nil {
		logger.WithError(err).WithField("guild", r.GuildID).WithField("role", mapping.RoleID).Error("failed revoking reaction role")
	}
}

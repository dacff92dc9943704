// Package verification grants the membership roles that mark a user as a
// verified member of the server.
package verification

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/commands"
	"github.com/gulagbot/gulagbot/common"
	"github.com/gulagbot/gulagbot/common/confdocs"
)

var logger = common.GetPluginLogger(&Plugin{})

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Verification",
		SysName:  "verification",
		Category: common.PluginCategoryMisc,
	}
}

func RegisterPlugin() {
	p := &Plugin{}
	common.RegisterPlugin(p)
	p.registerCommands()
}

const confDocName = "verification"

type Config struct {
	MemberRole     string `json:"member_role"`
	VerifiedRole   string `json:"verified_role"`
	UnverifiedRole string `json:"unverified_role"`
	LogChannel     string `json:"log_channel"`
}

func GetConfig() *Config {
	conf := &Config{}
	confdocs.Load(confDocName, conf)
	return conf
}

func SaveConfig(conf *Config) bool {
	return confdocs.Save(confDocName, conf)
}

// MembershipRoles returns the configured base membership roles, the set a
// released prisoner falls back to when no role snapshot exists.
func MembershipRoles() []string {
	conf := GetConfig()

	out := make([]string, 0, 2)
	if conf.MemberRole != "" {
		out = append(out, conf.MemberRole)
	}
	if conf.VerifiedRole != "" {
		out = append(out, conf.VerifiedRole)
	}
	return out
}

var moderatePerms int64 = discordgo.PermissionModerateMembers

func (p *Plugin) registerCommands() {
	commands.Register(&commands.RegisteredCommand{
		Command: &discordgo.ApplicationCommand{
			Name:                     "verify",
			Description:              "Verify a user, granting the membership roles",
			DefaultMemberPermissions: &moderatePerms,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to verify",
					Required:    true,
				},
			},
		},
		Handler: p.cmdVerify,
	})
}

func (p *Plugin) cmdVerify(data *commands.Data) (string, error) {
	target := data.UserOption("user")
	if target == nil {
		return "", commands.NewPublicError("No target user given.")
	}

	conf := GetConfig()
	granted := MembershipRoles()
	if len(granted) == 0 {
		return "", commands.NewPublicError("No membership roles are configured, set them with /config.")
	}

	for _, r := range granted {
		if err := common.BotSession.GuildMemberRoleAdd(data.GuildID, target.ID, r); err != nil {
			logger.WithError(err).WithField("guild", data.GuildID).WithField("role", r).Warn("failed granting membership role")
		}
	}

	if conf.UnverifiedRole != "" {
		if err := common.BotSession.GuildMemberRoleRemove(data.GuildID, target.ID, conf.UnverifiedRole); err != nil {
			logger.WithError(err).WithField("guild", data.GuildID).Warn("failed removing the unverified role")
		}
	}

	if conf.LogChannel != "" {
		bot.SendMessage(conf.LogChannel, fmt.Sprintf("%s verified %s", data.Invoker.Mention(), target.Mention()))
	}

	return fmt.Sprintf("✅ Verified %s.", target.Mention()), nil
}

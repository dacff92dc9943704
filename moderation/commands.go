package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/commands"
)

var (
	banPerms    int64 = discordgo.PermissionBanMembers
	kickPerms   int64 = discordgo.PermissionKickMembers
	managePerms int64 = discordgo.PermissionManageMessages
)

func (p *Plugin) registerCommands() {
	commands.Register(
		&commands.RegisteredCommand{
			Command: &discordgo.ApplicationCommand{
				Name:                     "ban",
				Description:              "Ban a user from the server",
				DefaultMemberPermissions: &banPerms,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The user to ban",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "reason",
						Description: "The reason for the ban",
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "delete_days",
						Description: "Days of messages to delete (0-7)",
					},
				},
			},
			Handler: p.cmdBan,
		},
		&commands.RegisteredCommand{
			Command: &discordgo.ApplicationCommand{
				Name:                     "kick",
				Description:              "Kick a user from the server",
				DefaultMemberPermissions: &kickPerms,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The user to kick",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "reason",
						Description: "The reason for the kick",
					},
				},
			},
			Handler: p.cmdKick,
		},
		&commands.RegisteredCommand{
			Command: &discordgo.ApplicationCommand{
				Name:                     "clear",
				Description:              "Bulk delete recent messages in this channel",
				DefaultMemberPermissions: &managePerms,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "count",
						Description: "Number of messages to delete (max 100)",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Only delete messages from this user",
					},
				},
			},
			Handler:           p.cmdClear,
			EphemeralResponse: true,
		},
	)
}

func (p *Plugin) cmdBan(data *commands.Data) (string, error) {
	target := data.UserOption("user")
	if target == nil {
		return "", commands.NewPublicError("No target user given.")
	}

	conf := GetConfig()
	reason := data.StrOption("reason")
	if reason == "" {
		reason = "No reason provided"
	}

	deleteDays := int(data.IntOption("delete_days", int64(conf.BanDeleteDays)))
	if deleteDays < 0 {
		deleteDays = 0
	}
	if deleteDays > 7 {
		deleteDays = 7
	}

	if err := punish(conf, punishmentBan, data.GuildID, data.Invoker, target, reason, deleteDays); err != nil {
		return "", err
	}

	return fmt.Sprintf("🔨 Banned %s. Reason: %s", target.Mention(), reason), nil
}

func (p *Plugin) cmdKick(data *commands.Data) (string, error) {
	target := data.UserOption("user")
	if target == nil {
		return "", commands.NewPublicError("No target user given.")
	}

	conf := GetConfig()
	reason := data.StrOption("reason")
	if reason == "" {
		reason = "No reason provided"
	}

	if err := punish(conf, punishmentKick, data.GuildID, data.Invoker, target, reason, 0); err != nil {
		return "", err
	}

	return fmt.Sprintf("👢 Kicked %s. Reason: %s", target.Mention(), reason), nil
}

func (p *Plugin) cmdClear(data *commands.Data) (string, error) {
	count := int(data.IntOption("count", 0))
	if count < 1 {
		return "", commands.NewPublicError("Count has to be at least 1.")
	}

	filterUser := ""
	if target := data.UserOption("user"); target != nil {
		filterUser = target.ID
	}

	deleted, err := deleteMessages(data.ChannelID, filterUser, count)
	if err != nil {
		return "", err
	}

	logAction(GetConfig(), fmt.Sprintf("%s cleared %d messages in <#%s>", data.Invoker.Mention(), deleted, data.ChannelID))

	return fmt.Sprintf("Deleted %d messages.", deleted), nil
}

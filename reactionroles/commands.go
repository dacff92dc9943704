package reactionroles

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/commands"
)

var manageRolesPerms int64 = discordgo.PermissionManageRoles

func (p *Plugin) registerCommands() {
	commands.Register(&commands.RegisteredCommand{
		Command: &discordgo.ApplicationCommand{
			Name:                     "reactionroles",
			Description:              "Manage reaction role mappings",
			DefaultMemberPermissions: &manageRolesPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a reaction role mapping",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "Channel containing the message",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message_id",
							Description: "The message to react on",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "emoji",
							Description: "The emoji (unicode, or name:id for custom)",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role to grant",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a reaction role mapping",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message_id",
							Description: "The mapped message",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "emoji",
							Description: "The mapped emoji",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List all reaction role mappings",
				},
			},
		},
		Handler:           p.cmdReactionRoles,
		EphemeralResponse: true,
	})
}

func (p *Plugin) cmdReactionRoles(data *commands.Data) (string, error) {
	switch data.Subcommand() {
	case "add":
		return p.cmdAdd(data)
	case "remove":
		return p.cmdRemove(data)
	case "list":
		return p.cmdList(data)
	}

	return "", commands.NewPublicError("Unknown subcommand.")
}

func (p *Plugin) cmdAdd(data *commands.Data) (string, error) {
	conf := GetConfig()

	messageID := data.StrOption("message_id")
	emoji := strings.TrimSpace(data.StrOption("emoji"))
	if existing := findMapping(conf, messageID, emoji); existing != nil {
		return "", commands.NewPublicError("That message/emoji pair is already mapped.")
	}

	channelID := ""
	if opt, ok := data.ChannelOption("channel"); ok {
		channelID = opt
	}

	roleID := data.RoleOption("role")
	if roleID == "" {
		return "", commands.NewPublicError("No role given.")
	}

	conf.Mappings = append(conf.Mappings, Mapping{
		ChannelID: channelID,
		MessageID: messageID,
		Emoji:     emoji,
		RoleID:    roleID,
	})

	if !SaveConfig(conf) {
		return "", commands.NewPublicError("Failed saving the mapping.")
	}

	return fmt.Sprintf("Mapped %s on message %s to <@&%s>.", emoji, messageID, roleID), nil
}

func (p *Plugin) cmdRemove(data *commands.Data) (string, error) {
	conf := GetConfig()

	messageID := data.StrOption("message_id")
	emoji := strings.TrimSpace(data.StrOption("emoji"))

	filtered := make([]Mapping, 0, len(conf.Mappings))
	removed := false
	for _, m := range conf.Mappings {
		if m.MessageID == messageID && m.Emoji == emoji {
			removed = true
			continue
		}
		filtered = append(filtered, m)
	}

	if !removed {
		return "", commands.NewPublicError("No such mapping.")
	}

	conf.Mappings = filtered
	if !SaveConfig(conf) {
		return "", commands.NewPublicError("Failed saving the change.")
	}

	return "Mapping removed.", nil
}

func (p *Plugin) cmdList(data *commands.Data) (string, error) {
	conf := GetConfig()
	if len(conf.Mappings) == 0 {
		return "No reaction role mappings configured.", nil
	}

	var b strings.Builder
	for _, m := range conf.Mappings {
		fmt.Fprintf(&b, "%s on %s → <@&%s>\n", m.Emoji, m.MessageID, m.RoleID)
	}
	return b.String(), nil
}

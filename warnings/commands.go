package warnings

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/commands"
)

var moderatePerms int64 = discordgo.PermissionModerateMembers

func (p *Plugin) registerCommands() {
	commands.Register(
		&commands.RegisteredCommand{
			Command: &discordgo.ApplicationCommand{
				Name:                     "warn",
				Description:              "Warn a user",
				DefaultMemberPermissions: &moderatePerms,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The user to warn",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "reason",
						Description: "The reason for the warning",
						Required:    true,
					},
				},
			},
			Handler: p.cmdWarn,
		},
		&commands.RegisteredCommand{
			Command: &discordgo.ApplicationCommand{
				Name:                     "warnings",
				Description:              "List a user's warnings",
				DefaultMemberPermissions: &moderatePerms,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The user to look up",
						Required:    true,
					},
				},
			},
			Handler:           p.cmdWarnings,
			EphemeralResponse: true,
		},
		&commands.RegisteredCommand{
			Command: &discordgo.ApplicationCommand{
				Name:                     "delwarn",
				Description:              "Delete a single warning by id",
				DefaultMemberPermissions: &moderatePerms,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "id",
						Description: "The warning id to delete",
						Required:    true,
					},
				},
			},
			Handler:           p.cmdDelWarn,
			EphemeralResponse: true,
		},
		&commands.RegisteredCommand{
			Command: &discordgo.ApplicationCommand{
				Name:                     "clearwarns",
				Description:              "Clear all warnings of a user",
				DefaultMemberPermissions: &moderatePerms,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The user to clear",
						Required:    true,
					},
				},
			},
			Handler:           p.cmdClearWarns,
			EphemeralResponse: true,
		},
	)
}

func (p *Plugin) cmdWarn(data *commands.Data) (string, error) {
	target := data.UserOption("user")
	if target == nil {
		return "", commands.NewPublicError("No target user given.")
	}

	reason := data.StrOption("reason")
	id, err := p.store.Add(data.GuildID, target.ID, data.Invoker.ID, reason)
	if err != nil {
		return "", err
	}

	_ = bot.SendDM(target.ID, fmt.Sprintf("You have been warned (#%d).\nReason: %s", id, reason))

	return fmt.Sprintf("⚠️ Warned %s (#%d). Reason: %s", target.Mention(), id, reason), nil
}

func (p *Plugin) cmdWarnings(data *commands.Data) (string, error) {
	target := data.UserOption("user")
	if target == nil {
		return "", commands.NewPublicError("No target user given.")
	}

	list, err := p.store.List(data.GuildID, target.ID)
	if err != nil {
		return "", err
	}

	if len(list) == 0 {
		return fmt.Sprintf("%s has no warnings.", target.Mention()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d warning(s):\n", target.Mention(), len(list))
	for _, w := range list {
		fmt.Fprintf(&b, "`#%d` <t:%d:d> by <@%s>: %s\n", w.ID, w.CreatedAt.Unix(), w.ModeratorID, w.Reason)
	}

	return b.String(), nil
}

func (p *Plugin) cmdDelWarn(data *commands.Data) (string, error) {
	id := data.IntOption("id", 0)
	if id < 1 {
		return "", commands.NewPublicError("Invalid warning id.")
	}

	ok, err := p.store.Delete(data.GuildID, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", commands.NewPublicErrorF("No warning with id #%d found.", id)
	}

	return fmt.Sprintf("Deleted warning #%d.", id), nil
}

func (p *Plugin) cmdClearWarns(data *commands.Data) (string, error) {
	target := data.UserOption("user")
	if target == nil {
		return "", commands.NewPublicError("No target user given.")
	}

	n, err := p.store.Clear(data.GuildID, target.ID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Cleared %d warning(s) for %s.", n, target.Mention()), nil
}

package gulag

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/commands"
)

var moderatePerms int64 = discordgo.PermissionModerateMembers

func (p *Plugin) registerCommands() {
	commands.Register(
		&commands.RegisteredCommand{
			Command: &discordgo.ApplicationCommand{
				Name:                     "gulag",
				Description:              "Send a user to the gulag",
				DefaultMemberPermissions: &moderatePerms,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The user to send to the gulag",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "reason",
						Description: "The reason for the sanction",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "duration",
						Description: "Duration of the sanction (e.g. 30m, 1h, 2d)",
					},
				},
			},
			Handler: p.cmdGulag,
		},
		&commands.RegisteredCommand{
			Command: &discordgo.ApplicationCommand{
				Name:                     "ungulag",
				Description:              "Release a user from the gulag",
				DefaultMemberPermissions: &moderatePerms,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The user to release",
						Required:    true,
					},
				},
			},
			Handler: p.cmdUngulag,
		},
	)
}

func (p *Plugin) cmdGulag(data *commands.Data) (string, error) {
	target := data.UserOption("user")
	if target == nil {
		return "", commands.NewPublicError("No target user given.")
	}
	if target.Bot {
		return "", commands.NewPublicError("Bots cannot be sent to the gulag.")
	}

	replaced := p.manager.IsQuarantined(data.GuildID, target.ID)

	result, err := p.manager.Impose(data.GuildID, target.ID, data.StrOption("duration"), data.StrOption("reason"))
	if err != nil {
		return "", err
	}

	resp := fmt.Sprintf("🔒 Sent %s to the gulag for %s, release <t:%d:R>.",
		target.Mention(),
		FormatDuration(int(result.AppliedDuration.Seconds())),
		result.EndTime.Unix())
	if replaced {
		resp += " The previous sanction was replaced."
	}

	return resp, nil
}

func (p *Plugin) cmdUngulag(data *commands.Data) (string, error) {
	target := data.UserOption("user")
	if target == nil {
		return "", commands.NewPublicError("No target user given.")
	}

	result, err := p.manager.Lift(data.GuildID, target.ID, true)
	if err != nil {
		return "", err
	}

	if result.AlreadyLifted {
		return "", commands.NewPublicError("This user is not in the gulag.")
	}

	return fmt.Sprintf("🔓 Released %s from the gulag.", target.Mention()), nil
}

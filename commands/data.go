package commands

import (
	"github.com/bwmarrin/discordgo"
)

// Data carries everything a command handler needs about the interaction.
type Data struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	GuildID   string
	ChannelID string
	Invoker   *discordgo.User

	options map[string]*discordgo.ApplicationCommandInteractionDataOption
}

func newData(s *discordgo.Session, ic *discordgo.InteractionCreate, cmdData *discordgo.ApplicationCommandInteractionData) *Data {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	flattenOptions(cmdData.Options, opts)

	var invoker *discordgo.User
	if ic.Member != nil {
		invoker = ic.Member.User
	} else {
		invoker = ic.User
	}

	return &Data{
		Session:     s,
		Interaction: ic,
		GuildID:     ic.GuildID,
		ChannelID:   ic.ChannelID,
		Invoker:     invoker,
		options:     opts,
	}
}

func flattenOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, out map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	for _, opt := range opts {
		out[opt.Name] = opt
		flattenOptions(opt.Options, out)
	}
}

// Subcommand returns the name of the invoked subcommand, if any.
func (d *Data) Subcommand() string {
	for _, opt := range d.options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt.Name
		}
	}
	return ""
}

// StrOption returns the named string option or "" if absent.
func (d *Data) StrOption(name string) string {
	if opt, ok := d.options[name]; ok {
		return opt.StringValue()
	}
	return ""
}

// IntOption returns the named integer option or def if absent.
func (d *Data) IntOption(name string, def int64) int64 {
	if opt, ok := d.options[name]; ok {
		return opt.IntValue()
	}
	return def
}

// UserOption resolves the named user option or nil if absent.
func (d *Data) UserOption(name string) *discordgo.User {
	if opt, ok := d.options[name]; ok {
		return opt.UserValue(d.Session)
	}
	return nil
}

// ChannelOption returns the named channel option's id.
func (d *Data) ChannelOption(name string) (string, bool) {
	if opt, ok := d.options[name]; ok {
		if c := opt.ChannelValue(d.Session); c != nil {
			return c.ID, true
		}
	}
	return "", false
}

// RoleOption returns the named role option's id or "" if absent.
func (d *Data) RoleOption(name string) string {
	if opt, ok := d.options[name]; ok {
		if r := opt.RoleValue(d.Session, d.GuildID); r != nil {
			return r.ID
		}
	}
	return ""
}

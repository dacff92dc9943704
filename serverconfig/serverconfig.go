// Package serverconfig exposes the in-chat configuration surface: viewing
// and updating the per-feature config documents with /config.
package serverconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/automod"
	"github.com/gulagbot/gulagbot/commands"
	"github.com/gulagbot/gulagbot/common"
	"github.com/gulagbot/gulagbot/gulag"
	"github.com/gulagbot/gulagbot/moderation"
	"github.com/gulagbot/gulagbot/verification"
)

var logger = common.GetPluginLogger(&Plugin{})

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Server Config",
		SysName:  "server_config",
		Category: common.PluginCategoryCore,
	}
}

func RegisterPlugin() {
	p := &Plugin{}
	common.RegisterPlugin(p)
	p.registerCommands()
}

var adminPerms int64 = discordgo.PermissionAdministrator

var sections = []string{"gulag", "moderation", "verification", "automod"}

func (p *Plugin) registerCommands() {
	sectionChoices := make([]*discordgo.ApplicationCommandOptionChoice, len(sections))
	for i, s := range sections {
		sectionChoices[i] = &discordgo.ApplicationCommandOptionChoice{Name: s, Value: s}
	}

	commands.Register(&commands.RegisteredCommand{
		Command: &discordgo.ApplicationCommand{
			Name:                     "config",
			Description:              "View and change the bot configuration",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the settings of a section",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "section",
							Description: "The config section",
							Required:    true,
							Choices:     sectionChoices,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Change a setting",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "section",
							Description: "The config section",
							Required:    true,
							Choices:     sectionChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "The setting to change",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "The new value (role/channel id, duration like 1h, or text)",
							Required:    true,
						},
					},
				},
			},
		},
		Handler:           p.cmdConfig,
		EphemeralResponse: true,
	})
}

func (p *Plugin) cmdConfig(data *commands.Data) (string, error) {
	switch data.Subcommand() {
	case "show":
		return showSection(data.StrOption("section"))
	case "set":
		return setKey(data.StrOption("section"), data.StrOption("key"), data.StrOption("value"))
	}

	return "", commands.NewPublicError("Unknown subcommand.")
}

func showSection(section string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s settings**\n```\n", section)

	switch section {
	case "gulag":
		conf := gulag.GetConfig()
		fmt.Fprintf(&b, "prisoner_role:     %s\n", orUnset(conf.PrisonerRole))
		fmt.Fprintf(&b, "gulag_channel:     %s\n", orUnset(conf.GulagChannel))
		fmt.Fprintf(&b, "log_channel:       %s\n", orUnset(conf.LogChannel))
		fmt.Fprintf(&b, "default_duration:  %s\n", gulag.FormatDuration(conf.DefaultDurationSeconds))
		fmt.Fprintf(&b, "min_duration:      %s\n", gulag.FormatDuration(conf.MinDurationSeconds))
		fmt.Fprintf(&b, "max_duration:      %s\n", gulag.FormatDuration(conf.MaxDurationSeconds))
		fmt.Fprintf(&b, "message_imprisoned: %s\n", conf.Messages.Imprisoned)
		fmt.Fprintf(&b, "message_released:   %s\n", conf.Messages.Released)
		fmt.Fprintf(&b, "message_welcome:    %s\n", conf.Messages.Welcome)
	case "moderation":
		conf := moderation.GetConfig()
		fmt.Fprintf(&b, "log_channel:     %s\n", orUnset(conf.LogChannel))
		fmt.Fprintf(&b, "ban_delete_days: %d\n", conf.BanDeleteDays)
	case "verification":
		conf := verification.GetConfig()
		fmt.Fprintf(&b, "member_role:     %s\n", orUnset(conf.MemberRole))
		fmt.Fprintf(&b, "verified_role:   %s\n", orUnset(conf.VerifiedRole))
		fmt.Fprintf(&b, "unverified_role: %s\n", orUnset(conf.UnverifiedRole))
		fmt.Fprintf(&b, "log_channel:     %s\n", orUnset(conf.LogChannel))
	case "automod":
		conf := automod.GetConfig()
		fmt.Fprintf(&b, "enabled:             %t\n", conf.Enabled)
		fmt.Fprintf(&b, "excluded_channels:   %s\n", orUnset(strings.Join(conf.ExcludedChannels, ", ")))
		fmt.Fprintf(&b, "banned_words:        %s\n", orUnset(strings.Join(conf.BannedWords, ", ")))
		fmt.Fprintf(&b, "caps_percent:        %d\n", conf.CapsPercent)
		fmt.Fprintf(&b, "spam_messages:       %d\n", conf.SpamMessages)
		fmt.Fprintf(&b, "spam_window:         %s\n", gulag.FormatDuration(conf.SpamWindowSeconds))
		fmt.Fprintf(&b, "spam_mute:           %s\n", gulag.FormatDuration(conf.SpamMuteSeconds))
		fmt.Fprintf(&b, "max_warnings:        %d\n", conf.MaxWarnings)
	default:
		return "", commands.NewPublicError("Unknown section.")
	}

	b.WriteString("```")
	return b.String(), nil
}

func setKey(section, key, value string) (string, error) {
	var saved bool

	switch section {
	case "gulag":
		conf := gulag.GetConfig()
		switch key {
		case "prisoner_role":
			conf.PrisonerRole = value
		case "gulag_channel":
			conf.GulagChannel = value
		case "log_channel":
			conf.LogChannel = value
		case "default_duration", "min_duration", "max_duration":
			seconds, err := parseDurationValue(value)
			if err != nil {
				return "", err
			}
			switch key {
			case "default_duration":
				conf.DefaultDurationSeconds = seconds
			case "min_duration":
				conf.MinDurationSeconds = seconds
			case "max_duration":
				conf.MaxDurationSeconds = seconds
			}
		case "message_imprisoned":
			conf.Messages.Imprisoned = value
		case "message_released":
			conf.Messages.Released = value
		case "message_welcome":
			conf.Messages.Welcome = value
		default:
			return "", unknownKey(section, key)
		}
		saved = gulag.SaveConfig(conf)

	case "moderation":
		conf := moderation.GetConfig()
		switch key {
		case "log_channel":
			conf.LogChannel = value
		case "ban_delete_days":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 || n > 7 {
				return "", commands.NewPublicError("ban_delete_days has to be a number between 0 and 7.")
			}
			conf.BanDeleteDays = n
		default:
			return "", unknownKey(section, key)
		}
		saved = moderation.SaveConfig(conf)

	case "verification":
		conf := verification.GetConfig()
		switch key {
		case "member_role":
			conf.MemberRole = value
		case "verified_role":
			conf.VerifiedRole = value
		case "unverified_role":
			conf.UnverifiedRole = value
		case "log_channel":
			conf.LogChannel = value
		default:
			return "", unknownKey(section, key)
		}
		saved = verification.SaveConfig(conf)

	case "automod":
		conf := automod.GetConfig()
		switch key {
		case "enabled":
			on, err := strconv.ParseBool(value)
			if err != nil {
				return "", commands.NewPublicError("enabled has to be true or false.")
			}
			conf.Enabled = on
		case "excluded_channels":
			conf.ExcludedChannels = splitList(value)
		case "banned_words":
			conf.BannedWords = splitList(value)
		case "caps_percent":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 || n > 100 {
				return "", commands.NewPublicError("caps_percent has to be a number between 0 and 100.")
			}
			conf.CapsPercent = n
		case "spam_messages", "max_warnings":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return "", commands.NewPublicErrorF("%s has to be a positive number.", key)
			}
			if key == "spam_messages" {
				conf.SpamMessages = n
			} else {
				conf.MaxWarnings = n
			}
		case "spam_window", "spam_mute":
			seconds, err := parseDurationValue(value)
			if err != nil {
				return "", err
			}
			if key == "spam_window" {
				conf.SpamWindowSeconds = seconds
			} else {
				conf.SpamMuteSeconds = seconds
			}
		default:
			return "", unknownKey(section, key)
		}
		saved = automod.SaveConfig(conf)

	default:
		return "", commands.NewPublicError("Unknown section.")
	}

	if !saved {
		return "", commands.NewPublicError("Failed saving the config document.")
	}

	logger.Infof("config updated: %s.%s", section, key)
	return fmt.Sprintf("Set `%s.%s` to `%s`.", section, key, value), nil
}

func parseDurationValue(value string) (int, error) {
	seconds := gulag.ParseDuration(value, -1)
	if seconds < 0 {
		return 0, commands.NewPublicError("Invalid duration, use e.g. 30m, 1h or 2d.")
	}
	return seconds, nil
}

func unknownKey(section, key string) error {
	return commands.NewPublicErrorF("Unknown key %q in section %q.", key, section)
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

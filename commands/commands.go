// Package commands registers application (slash) commands from all plugins
// and dispatches interactions to their handlers.
package commands

import (
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/common"
)

var logger = common.GetPluginLogger(&Plugin{})

var (
	_ bot.BotInitHandler     = (*Plugin)(nil)
	_ bot.LateBotInitHandler = (*Plugin)(nil)
)

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Commands",
		SysName:  "commands",
		Category: common.PluginCategoryCore,
	}
}

func RegisterPlugin() {
	common.RegisterPlugin(&Plugin{})
}

// Handler runs a slash command and returns the response shown to the invoker.
// Returning a PublicError shows its message instead of the generic failure.
type Handler func(data *Data) (string, error)

type RegisteredCommand struct {
	Command *discordgo.ApplicationCommand
	Handler Handler

	// EphemeralResponse hides the response from everyone but the invoker
	EphemeralResponse bool
}

var registeredCommands = make(map[string]*RegisteredCommand)

// Register adds commands to the registry, called from plugin init/RegisterPlugin
func Register(cmds ...*RegisteredCommand) {
	for _, cmd := range cmds {
		registeredCommands[cmd.Command.Name] = cmd
	}
}

func (p *Plugin) BotInit() {
	common.BotSession.AddHandler(handleInteractionCreate)
}

func (p *Plugin) LateBotInit() {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(registeredCommands))
	for _, v := range registeredCommands {
		cmds = append(cmds, v.Command)
	}

	_, err := common.BotSession.ApplicationCommandBulkOverwrite(common.BotUser.ID, "", cmds)
	if err != nil {
		logger.WithError(err).Error("failed registering application commands")
		return
	}

	logger.Infof("Registered %d application commands", len(cmds))
}

func handleInteractionCreate(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := ic.ApplicationCommandData()
	cmd, ok := registeredCommands[data.Name]
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("recovered from panic in command %s: %v\n%s", data.Name, r, debug.Stack())
			respond(s, ic, "Something went wrong.", true)
		}
	}()

	resp, err := cmd.Handler(newData(s, ic, &data))
	if err != nil {
		if public, ok := err.(*PublicError); ok {
			respond(s, ic, public.Error(), true)
			return
		}

		logger.WithError(err).Errorf("command %s failed", data.Name)
		respond(s, ic, "Something went wrong.", true)
		return
	}

	if resp != "" {
		respond(s, ic, resp, cmd.EphemeralResponse)
	}
}

func respond(s *discordgo.Session, ic *discordgo.InteractionCreate, content string, ephemeral bool) {
	respData := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		respData.Flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: respData,
	})
	if err != nil {
		logger.WithError(err).Error("failed responding to interaction")
	}
}

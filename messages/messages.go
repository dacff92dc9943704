// Package messages implements /message, which posts one of the predefined
// announcement messages configured per deployment.
package messages

import (
	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/commands"
	"github.com/gulagbot/gulagbot/common"
	"github.com/gulagbot/gulagbot/common/confdocs"
)

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Messages",
		SysName:  "messages",
		Category: common.PluginCategoryMisc,
	}
}

func RegisterPlugin() {
	p := &Plugin{}
	common.RegisterPlugin(p)
	p.registerCommands()
}

type PredefinedMessage struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type Config struct {
	Messages []PredefinedMessage `json:"messages"`
}

const confDocName = "messages"

func GetConfig() *Config {
	conf := &Config{}
	confdocs.Load(confDocName, conf)
	return conf
}

func SaveConfig(conf *Config) bool {
	return confdocs.Save(confDocName, conf)
}

func (p *Plugin) registerCommands() {
	// the configured names double as the option choices, like the reload of
	// the command list itself this only updates on restart
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, m := range GetConfig().Messages {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  m.Name,
			Value: m.Name,
		})
	}

	commands.Register(&commands.RegisteredCommand{
		Command: &discordgo.ApplicationCommand{
			Name:        "message",
			Description: "Send a predefined message",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "The message to send",
					Required:    true,
					Choices:     choices,
				},
			},
		},
		Handler: p.cmdMessage,
	})
}

func (p *Plugin) cmdMessage(data *commands.Data) (string, error) {
	name := data.StrOption("type")
	for _, m := range GetConfig().Messages {
		if m.Name == name {
			return m.Content, nil
		}
	}

	return "", commands.NewPublicError("No predefined message with that name is configured.")
}

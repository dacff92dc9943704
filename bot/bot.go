// Package bot owns the gateway connection and provides small helpers over
// the discord session used by all plugins.
package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/common"
)

var logger = common.GetFixedPrefixLogger("bot")

// BotInitHandler is implemented by plugins that need to do work after the
// session exists but before the gateway connection is opened.
type BotInitHandler interface {
	BotInit()
}

// LateBotInitHandler is implemented by plugins that need to run once the
// gateway connection is up (recovery, command registration).
type LateBotInitHandler interface {
	LateBotInit()
}

// BotStopperHandler is implemented by plugins that need a graceful shutdown.
type BotStopperHandler interface {
	StopBot(wg *sync.WaitGroup)
}

// Run opens the gateway connection and runs plugin lifecycle hooks.
func Run() error {
	session := common.BotSession
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions

	for _, p := range common.Plugins {
		if initer, ok := p.(BotInitHandler); ok {
			initer.BotInit()
		}
	}

	if err := session.Open(); err != nil {
		return common.ErrWithCaller(err)
	}

	for _, p := range common.Plugins {
		if initer, ok := p.(LateBotInitHandler); ok {
			initer.LateBotInit()
		}
	}

	logger.Info("Bot is running")
	return nil
}

// Stop shuts down all stopper plugins and closes the gateway connection.
func Stop() {
	var wg sync.WaitGroup
	for _, p := range common.Plugins {
		if stopper, ok := p.(BotStopperHandler); ok {
			wg.Add(1)
			go stopper.StopBot(&wg)
		}
	}
	wg.Wait()

	if err := common.BotSession.Close(); err != nil {
		logger.WithError(err).Error("failed closing gateway connection")
	}
}

// GetMember fetches a guild member through the state cache if possible,
// falling back to the rest api.
func GetMember(guildID, userID string) (*discordgo.Member, error) {
	member, err := common.BotSession.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member, nil
	}

	return common.BotSession.GuildMember(guildID, userID)
}

// SendMessage sends a plain message to a channel, logging failures.
func SendMessage(channelID, content string) {
	if channelID == "" {
		return
	}

	_, err := common.BotSession.ChannelMessageSend(channelID, content)
	if err != nil {
		logger.WithError(err).WithField("channel", channelID).Error("failed sending channel message")
	}
}

// SendDM sends a direct message to a user. Users can have DMs disabled so
// failures are expected and only logged at debug level.
func SendDM(userID, content string) error {
	channel, err := common.BotSession.UserChannelCreate(userID)
	if err != nil {
		logger.WithError(err).WithField("user", userID).Debug("failed creating DM channel")
		return err
	}

	_, err = common.BotSession.ChannelMessageSend(channel.ID, content)
	if err != nil {
		logger.WithError(err).WithField("user", userID).Debug("failed sending DM")
	}
	return err
}

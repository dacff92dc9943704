package common

import (
	"os"
	"path/filepath"

	"emperror.dev/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/gulagbot/gulagbot/common/config"
	"github.com/sirupsen/logrus"
)

const (
	VERSION = "1.2.0"
)

const ErrMissingToken = errors.Sentinel("no bot token set (gulagbot.bot_token)")

var (
	BotSession *discordgo.Session
	BotUser    *discordgo.User

	ConfBotToken = config.RegisterOption("gulagbot.bot_token", "Discord bot token", "")
	ConfDataDir  = config.RegisterOption("gulagbot.data_dir", "Directory for persistent data and config documents", "data")
	ConfOwner    = config.RegisterOption("gulagbot.owner", "User ID of the bot owner", "")
)

// Init loads the core config and opens the discord session.
// Has to be called before bot.Run and before any plugin touches the session.
func Init() error {
	config.AddSource(&config.EnvSource{})
	config.Load()

	token := ConfBotToken.GetString()
	if token == "" {
		return ErrMissingToken
	}

	if err := os.MkdirAll(ConfDataDir.GetString(), 0755); err != nil {
		return ErrWithCaller(err)
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return ErrWithCaller(err)
	}
	session.MaxRestRetries = 3

	BotSession = session

	user, err := session.User("@me")
	if err != nil {
		return ErrWithCaller(err)
	}
	BotUser = user

	logrus.Info("Core initialized, running as ", user.Username)
	return nil
}

// DataPath returns the path to a file inside the configured data directory.
func DataPath(name string) string {
	return filepath.Join(ConfDataDir.GetString(), name)
}

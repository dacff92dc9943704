package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gulagbot/gulagbot/automod"
	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/commands"
	"github.com/gulagbot/gulagbot/common"
	"github.com/gulagbot/gulagbot/gulag"
	"github.com/gulagbot/gulagbot/messages"
	"github.com/gulagbot/gulagbot/moderation"
	"github.com/gulagbot/gulagbot/reactionroles"
	"github.com/gulagbot/gulagbot/serverconfig"
	"github.com/gulagbot/gulagbot/verification"
	"github.com/gulagbot/gulagbot/warnings"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	logrus.Info("Gulagbot is initializing, version ", common.VERSION)

	if err := common.Init(); err != nil {
		logrus.WithError(err).Fatal("Failed initializing the core")
	}

	// Setup plugins
	commands.RegisterPlugin()
	gulag.RegisterPlugin()
	moderation.RegisterPlugin()
	warnings.RegisterPlugin()
	automod.RegisterPlugin()
	verification.RegisterPlugin()
	reactionroles.RegisterPlugin()
	messages.RegisterPlugin()
	serverconfig.RegisterPlugin()

	if err := bot.Run(); err != nil {
		logrus.WithError(err).Fatal("Failed starting the bot")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logrus.Info("Shutting down")
	bot.Stop()
}

// Package automod watches guild messages and sanctions misbehaving members
// on its own: banned words and shouting get the message deleted and a
// warning recorded, spamming gets a stay in the gulag, and piling up too
// many warnings escalates to longer stays and finally a ban.
package automod

import (
	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/common"
	"github.com/gulagbot/gulagbot/common/confdocs"
)

var logger = common.GetPluginLogger(&Plugin{})

var _ bot.BotInitHandler = (*Plugin)(nil)

type Plugin struct {
	tracker *spamTracker
}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Automoderator",
		SysName:  "automod",
		Category: common.PluginCategoryModeration,
	}
}

func RegisterPlugin() {
	common.RegisterPlugin(&Plugin{})
}

type Config struct {
	Enabled          bool     `json:"enabled"`
	ExcludedChannels []string `json:"excluded_channels"`

	BannedWords []string `json:"banned_words"`
	CapsPercent int      `json:"caps_percent"`

	SpamMessages      int `json:"spam_messages"`
	SpamWindowSeconds int `json:"spam_window_seconds"`
	SpamMuteSeconds   int `json:"spam_mute_seconds"`

	// warning n (1-based) mutes for WarningMuteSeconds[n-1], reaching
	// MaxWarnings bans
	MaxWarnings        int   `json:"max_warnings"`
	WarningMuteSeconds []int `json:"warning_mute_seconds"`
}

const confDocName = "automod"

func GetConfig() *Config {
	conf := &Config{}
	confdocs.Load(confDocName, conf)

	if conf.CapsPercent <= 0 {
		conf.CapsPercent = 70
	}
	if conf.SpamMessages <= 0 {
		conf.SpamMessages = 5
	}
	if conf.SpamWindowSeconds <= 0 {
		conf.SpamWindowSeconds = 5
	}
	if conf.SpamMuteSeconds <= 0 {
		conf.SpamMuteSeconds = 600
	}
	if conf.MaxWarnings <= 0 {
		conf.MaxWarnings = 5
	}
	if len(conf.WarningMuteSeconds) == 0 {
		conf.WarningMuteSeconds = []int{300, 900, 3600, 10800, 86400}
	}

	return conf
}

func SaveConfig(conf *Config) bool {
	return confdocs.Save(confDocName, conf)
}

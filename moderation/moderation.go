// Package moderation carries the direct moderation commands: ban, kick and
// bulk message clearing, with action logging to a configured channel.
package moderation

import (
	"github.com/gulagbot/gulagbot/common"
	"github.com/gulagbot/gulagbot/common/confdocs"
)

var logger = common.GetPluginLogger(&Plugin{})

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Moderation",
		SysName:  "moderation",
		Category: common.PluginCategoryModeration,
	}
}

func RegisterPlugin() {
	p := &Plugin{}
	common.RegisterPlugin(p)
	p.registerCommands()
}

const confDocName = "moderation"

type Config struct {
	LogChannel string `json:"log_channel"`

	// number of days of messages wiped when banning, 0-7
	BanDeleteDays int `json:"ban_delete_days"`
}

func GetConfig() *Config {
	conf := &Config{}
	confdocs.Load(confDocName, conf)

	if conf.BanDeleteDays < 0 {
		conf.BanDeleteDays = 0
	}
	if conf.BanDeleteDays > 7 {
		conf.BanDeleteDays = 7
	}

	return conf
}

func SaveConfig(conf *Config) bool {
	return confdocs.Save(confDocName, conf)
}

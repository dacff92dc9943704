package common

import (
	"github.com/sirupsen/logrus"
)

var (
	Plugins []Plugin
)

type PluginCategory struct {
	Name string
}

var (
	PluginCategoryCore       = &PluginCategory{Name: "Core"}
	PluginCategoryModeration = &PluginCategory{Name: "Moderation"}
	PluginCategoryMisc       = &PluginCategory{Name: "Misc"}
)

type PluginInfo struct {
	Name     string // Human readable name of the plugin
	SysName  string // snake_case version of the name in lower case
	Category *PluginCategory
}

// Plugin represents a plugin, all plugins needs to implement this at a bare minimum
type Plugin interface {
	PluginInfo() *PluginInfo
}

// RegisterPlugin registers a plugin, should be called when the bot is starting up
func RegisterPlugin(plugin Plugin) {
	Plugins = append(Plugins, plugin)
	logrus.Info("Registered plugin: " + plugin.PluginInfo().Name)
}

// GetPluginLogger returns a logger scoped to the plugin
func GetPluginLogger(plugin Plugin) *logrus.Entry {
	return logrus.WithField("p", plugin.PluginInfo().SysName)
}

// GetFixedPrefixLogger returns a logger with a fixed prefix field
func GetFixedPrefixLogger(prefix string) *logrus.Entry {
	return logrus.WithField("p", prefix)
}

package config

import (
	"os"
	"strings"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// EnvSource reads options from environment variables, mapping an option name
// like gulagbot.bot_token to GULAGBOT_BOT_TOKEN.
type EnvSource struct{}

func (EnvSource) GetValue(name string) interface{} {
	v := os.Getenv(strings.ToUpper(envKeyReplacer.Replace(name)))
	if v == "" {
		return nil
	}
	return v
}

func (EnvSource) Name() string {
	return "env"
}

// Package gulag implements the temporary sanction system: a quarantined
// member has all roles stripped and the prisoner role applied, with the
// previous role set persisted and restored when the sanction expires.
package gulag

import (
	"fmt"
	"sync"

	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/common"
	"github.com/gulagbot/gulagbot/common/confdocs"
	"github.com/gulagbot/gulagbot/verification"
)

var logger = common.GetPluginLogger(&Plugin{})

var (
	_ bot.BotInitHandler     = (*Plugin)(nil)
	_ bot.LateBotInitHandler = (*Plugin)(nil)
	_ bot.BotStopperHandler  = (*Plugin)(nil)
)

type Plugin struct {
	store   *SanctionStore
	sched   *Scheduler
	manager *Manager
}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Gulag",
		SysName:  "gulag",
		Category: common.PluginCategoryModeration,
	}
}

func RegisterPlugin() {
	p := &Plugin{}
	common.RegisterPlugin(p)
	p.registerCommands()
}

func (p *Plugin) BotInit() {
	store, err := OpenSanctionStore(common.DataPath("gulag_sanctions.db"))
	if err != nil {
		logger.WithError(err).Fatal("failed opening the sanction store")
	}

	p.store = store
	p.sched = NewScheduler(logger)
	p.manager = NewManager(store, p.sched, &discordPlatform{}, &discordNotifier{}, GetConfig, verification.MembershipRoles)
	activeManager = p.manager
}

// activeManager is the manager of the registered plugin, for plugins that
// impose sanctions of their own (the automoderator).
var activeManager *Manager

// Quarantine sends the user to the gulag for the given number of seconds.
// The duration is clamped to the configured bounds like any other sanction.
func Quarantine(guildID, userID string, seconds int, reason string) error {
	_, err := activeManager.Impose(guildID, userID, fmt.Sprintf("%ds", seconds), reason)
	return err
}

// LateBotInit re-arms persisted sanctions once the gateway is up, so expired
// ones can restore roles to members right away.
func (p *Plugin) LateBotInit() {
	if err := p.manager.RestoreActive(); err != nil {
		logger.WithError(err).Error("failed restoring persisted sanctions")
	}
}

func (p *Plugin) StopBot(wg *sync.WaitGroup) {
	p.sched.StopAll()
	if err := p.store.Close(); err != nil {
		logger.WithError(err).Error("failed closing the sanction store")
	}
	wg.Done()
}

// Config is the per-deployment gulag configuration document.
type Config struct {
	PrisonerRole string `json:"prisoner_role"`
	GulagChannel string `json:"gulag_channel"`
	LogChannel   string `json:"log_channel"`

	DefaultDurationSeconds int `json:"default_duration_seconds"`
	MinDurationSeconds     int `json:"min_duration_seconds"`
	MaxDurationSeconds     int `json:"max_duration_seconds"`

	Messages ConfigMessages `json:"messages"`
}

type ConfigMessages struct {
	Imprisoned string `json:"imprisoned"`
	Released   string `json:"released"`
	Welcome    string `json:"welcome"`
}

const (
	DefaultDuration = 3600    // 1 hour
	MinDuration     = 300     // 5 minutes
	MaxDuration     = 2592000 // 30 days
)

const confDocName = "gulag"

// GetConfig loads the gulag config document, filling in defaults.
func GetConfig() *Config {
	conf := &Config{}
	confdocs.Load(confDocName, conf)

	if conf.DefaultDurationSeconds <= 0 {
		conf.DefaultDurationSeconds = DefaultDuration
	}
	if conf.MinDurationSeconds <= 0 {
		conf.MinDurationSeconds = MinDuration
	}
	if conf.MaxDurationSeconds <= 0 {
		conf.MaxDurationSeconds = MaxDuration
	}

	if conf.Messages.Imprisoned == "" {
		conf.Messages.Imprisoned = "{user} has been sent to the gulag for {duration}. Reason: {reason}"
	}
	if conf.Messages.Released == "" {
		conf.Messages.Released = "{user} has been released from the gulag."
	}
	if conf.Messages.Welcome == "" {
		conf.Messages.Welcome = "Welcome to the gulag, {user}. You will be released in {duration}."
	}

	return conf
}

// SaveConfig persists the gulag config document.
func SaveConfig(conf *Config) bool {
	return confdocs.Save(confDocName, conf)
}

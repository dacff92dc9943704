// Package warnings keeps the per-user warnings ledger in a sqlite database.
package warnings

import (
	"sync"

	"github.com/gulagbot/gulagbot/bot"
	"github.com/gulagbot/gulagbot/common"
)

var logger = common.GetPluginLogger(&Plugin{})

var (
	_ bot.BotInitHandler    = (*Plugin)(nil)
	_ bot.BotStopperHandler = (*Plugin)(nil)
)

type Plugin struct {
	store *Store
}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Warnings",
		SysName:  "warnings",
		Category: common.PluginCategoryModeration,
	}
}

func RegisterPlugin() {
	p := &Plugin{}
	common.RegisterPlugin(p)
	p.registerCommands()
}

// activeStore is the store of the registered plugin, for other plugins that
// record warnings on their own behalf.
var activeStore *Store

func (p *Plugin) BotInit() {
	store, err := OpenStore(common.DataPath("warnings.sqlite"))
	if err != nil {
		logger.WithError(err).Fatal("failed opening the warnings database")
	}
	p.store = store
	activeStore = store
}

// AddWarning records a warning against the user and returns their total
// warning count in the guild afterwards.
func AddWarning(guildID, userID, moderatorID, reason string) (int, error) {
	if _, err := activeStore.Add(guildID, userID, moderatorID, reason); err != nil {
		return 0, err
	}
	return activeStore.Count(guildID, userID)
}

func (p *Plugin) StopBot(wg *sync.WaitGroup) {
	if err := p.store.Close(); err != nil {
		logger.WithError(err).Error("failed closing the warnings database")
	}
	wg.Done()
}

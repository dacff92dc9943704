// Package confdocs stores named configuration documents as json files in the
// data directory. Each feature keeps its settings in its own document
// ("gulag", "moderation", ...), read in full and written in full.
package confdocs

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gulagbot/gulagbot/common"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var logger = common.GetFixedPrefixLogger("confdocs")

// mutations are rare (config commands only) so one lock for all documents is fine
var mu sync.Mutex

func docPath(name string) string {
	return common.DataPath(name + ".json")
}

// Load reads the named document into out. A missing or corrupt document is
// not an error: out is left at its zero value and the problem is logged.
func Load(name string, out interface{}) {
	mu.Lock()
	defer mu.Unlock()

	data, err := os.ReadFile(docPath(name))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).Errorf("failed reading config document %q", name)
		}
		return
	}

	if err := json.Unmarshal(data, out); err != nil {
		logger.WithError(err).Errorf("config document %q is corrupt, using defaults", name)
	}
}

// Save writes the named document, reporting success.
func Save(name string, v interface{}) bool {
	mu.Lock()
	defer mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.WithError(err).Errorf("failed marshaling config document %q", name)
		return false
	}

	path := docPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.WithError(err).Errorf("failed creating config dir for %q", name)
		return false
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		logger.WithError(err).Errorf("failed writing config document %q", name)
		return false
	}

	return true
}

package gulag

import (
	"emperror.dev/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/buntdb"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SanctionRecord is one active quarantine, at most one per (guild, user).
type SanctionRecord struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`

	// roles held right before the sanction, restored on release
	OriginalRoles []string `json:"original_roles"`

	StartTime int64 `json:"start_time"` // unix milliseconds
	EndTime   int64 `json:"end_time"`   // unix milliseconds, the release deadline

	Reason string `json:"reason"`
}

func sanctionKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// the whole record set is kept as one json document under a single key and
// rewritten on every mutation, sanction counts stay tiny
const storeDocKey = "gulag:sanctions"

type sanctionsDoc struct {
	Sanctions []*SanctionRecord `json:"sanctions"`
}

// SanctionStore persists sanction records in a single buntdb file,
// fsync'd on every write.
type SanctionStore struct {
	db *buntdb.DB
}

// OpenSanctionStore opens (or creates) the backing database file and makes
// sure an empty document exists.
func OpenSanctionStore(path string) (*SanctionStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.WithMessage(err, "buntdb open")
	}

	var dbConf buntdb.Config
	if err := db.ReadConfig(&dbConf); err == nil {
		dbConf.SyncPolicy = buntdb.Always
		_ = db.SetConfig(dbConf)
	}

	store := &SanctionStore{db: db}
	if _, err := store.ListAll(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SanctionStore) Close() error {
	return s.db.Close()
}

// ListAll returns every persisted sanction record. A missing document is
// synthesized as empty and persisted.
func (s *SanctionStore) ListAll() ([]*SanctionRecord, error) {
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(storeDocKey)
		if err != nil {
			return err
		}
		raw = v
		return nil
	})

	if err == buntdb.ErrNotFound {
		if err := s.writeDoc(&sanctionsDoc{Sanctions: []*SanctionRecord{}}); err != nil {
			return nil, err
		}
		return []*SanctionRecord{}, nil
	}
	if err != nil {
		return nil, errors.WithMessage(err, "sanction store read")
	}

	doc := &sanctionsDoc{}
	if err := json.UnmarshalFromString(raw, doc); err != nil {
		return nil, errors.WithMessage(err, "sanction store decode")
	}
	if doc.Sanctions == nil {
		doc.Sanctions = []*SanctionRecord{}
	}

	return doc.Sanctions, nil
}

// Upsert writes the record, replacing any existing record for the same
// (guild, user). The write is synced before Upsert returns.
func (s *SanctionStore) Upsert(record *SanctionRecord) error {
	all, err := s.ListAll()
	if err != nil {
		return err
	}

	filtered := make([]*SanctionRecord, 0, len(all)+1)
	for _, v := range all {
		if v.GuildID == record.GuildID && v.UserID == record.UserID {
			continue
		}
		filtered = append(filtered, v)
	}
	filtered = append(filtered, record)

	return s.writeDoc(&sanctionsDoc{Sanctions: filtered})
}

// Remove deletes the record for the key and returns it, nil if none existed.
func (s *SanctionStore) Remove(guildID, userID string) (*SanctionRecord, error) {
	all, err := s.ListAll()
	if err != nil {
		return nil, err
	}

	var removed *SanctionRecord
	filtered := make([]*SanctionRecord, 0, len(all))
	for _, v := range all {
		if v.GuildID == guildID && v.UserID == userID {
			removed = v
			continue
		}
		filtered = append(filtered, v)
	}

	if removed == nil {
		return nil, nil
	}

	if err := s.writeDoc(&sanctionsDoc{Sanctions: filtered}); err != nil {
		return nil, err
	}

	return removed, nil
}

// Exists reports whether a record is present for the key.
func (s *SanctionStore) Exists(guildID, userID string) (bool, error) {
	all, err := s.ListAll()
	if err != nil {
		return false, err
	}

	for _, v := range all {
		if v.GuildID == guildID && v.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *SanctionStore) writeDoc(doc *sanctionsDoc) error {
	serialized, err := json.MarshalToString(doc)
	if err != nil {
		return errors.WithMessage(err, "sanction store encode")
	}

	err = s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(storeDocKey, serialized, nil)
		return err
	})
	return errors.WithMessage(err, "sanction store write")
}

package warnings

import (
	"time"

	"emperror.dev/errors"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS warnings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	moderator_id TEXT NOT NULL,
	reason TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_warnings_guild_user ON warnings(guild_id, user_id);
`

type Warning struct {
	ID          int64     `db:"id"`
	GuildID     string    `db:"guild_id"`
	UserID      string    `db:"user_id"`
	ModeratorID string    `db:"moderator_id"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"created_at"`
}

type Store struct {
	db *sqlx.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, errors.WithMessage(err, "sqlite connect")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WithMessage(err, "warnings schema")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add appends a warning and returns its id.
func (s *Store) Add(guildID, userID, moderatorID, reason string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO warnings (guild_id, user_id, moderator_id, reason, created_at) VALUES (?, ?, ?, ?, ?)`,
		guildID, userID, moderatorID, reason, time.Now().UTC())
	if err != nil {
		return 0, errors.WithMessage(err, "insert warning")
	}

	return res.LastInsertId()
}

// List returns the user's warnings in the guild, oldest first.
func (s *Store) List(guildID, userID string) ([]*Warning, error) {
	var out []*Warning
	err := s.db.Select(&out,
		`SELECT * FROM warnings WHERE guild_id = ? AND user_id = ? ORDER BY id ASC`,
		guildID, userID)
	if err != nil {
		return nil, errors.WithMessage(err, "list warnings")
	}
	return out, nil
}

// Count returns how many warnings the user has in the guild.
func (s *Store) Count(guildID, userID string) (int, error) {
	var n int
	err := s.db.Get(&n,
		`SELECT COUNT(*) FROM warnings WHERE guild_id = ? AND user_id = ?`,
		guildID, userID)
	if err != nil {
		return 0, errors.WithMessage(err, "count warnings")
	}
	return n, nil
}

// Delete removes one warning by id, scoped to the guild so a warning from
// another server cannot be deleted by id collision.
func (s *Store) Delete(guildID string, id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM warnings WHERE guild_id = ? AND id = ?`, guildID, id)
	if err != nil {
		return false, errors.WithMessage(err, "delete warning")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes all of the user's warnings in the guild, returning the count.
func (s *Store) Clear(guildID, userID string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM warnings WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if err != nil {
		return 0, errors.WithMessage(err, "clear warnings")
	}

	return res.RowsAffected()
}

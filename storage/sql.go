package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/opsdeck/cheatsheets/model"
	"github.com/opsdeck/cheatsheets/utils"
)

var sqlErr = utils.NewErrorWrapper("storage")

// schemaSQL is portable between SQLite and PostgreSQL.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS saved_items (
	client_id TEXT NOT NULL,
	item TEXT NOT NULL,
	saved_at BIGINT NOT NULL,
	PRIMARY KEY (client_id, item)
);
CREATE TABLE IF NOT EXISTS view_counts (
	sheet_key TEXT PRIMARY KEY,
	views BIGINT NOT NULL DEFAULT 0
);
`

// sqlStorage implements Storage on database/sql. Queries are written with
// "?" placeholders and rebound for drivers that number them.
type sqlStorage struct {
	db       *sql.DB
	numbered bool

	mu        sync.Mutex
	lastStamp int64
}

func newSQLStorage(db *sql.DB, numbered bool) (*sqlStorage, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, sqlErr.Wrapf(err, "create tables")
	}
	return &sqlStorage{db: db, numbered: numbered}, nil
}

func (s *sqlStorage) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// nextStamp returns a strictly increasing save time so saved_at alone
// preserves insertion order.
func (s *sqlStorage) nextStamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC().UnixNano()
	if now <= s.lastStamp {
		now = s.lastStamp + 1
	}
	s.lastStamp = now
	return now
}

func (s *sqlStorage) SaveItem(ctx context.Context, clientID, item string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO saved_items (client_id, item, saved_at)
VALUES (?, ?, ?)
ON CONFLICT (client_id, item) DO NOTHING
`), clientID, item, s.nextStamp())
	return sqlErr.Wrapf(err, "save %s", item)
}

func (s *sqlStorage) RemoveItem(ctx context.Context, clientID, item string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM saved_items WHERE client_id=? AND item=?`), clientID, item)
	return sqlErr.Wrapf(err, "remove %s", item)
}

func (s *sqlStorage) ListSaved(ctx context.Context, clientID string) ([]model.SavedItem, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT item, saved_at FROM saved_items
WHERE client_id=?
ORDER BY saved_at ASC, item ASC
`), clientID)
	if err != nil {
		return nil, sqlErr.Wrapf(err, "list saved items")
	}
	defer rows.Close()

	out := []model.SavedItem{}
	for rows.Next() {
		var item string
		var savedAt int64
		if err := rows.Scan(&item, &savedAt); err != nil {
			return nil, err
		}
		out = append(out, model.SavedItem{ClientID: clientID, Item: item, SavedAt: time.Unix(0, savedAt).UTC()})
	}
	return out, rows.Err()
}

func (s *sqlStorage) IsSaved(ctx context.Context, clientID, item string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM saved_items WHERE client_id=? AND item=?`), clientID, item).Scan(&n)
	if err != nil {
		return false, sqlErr.Wrapf(err, "check saved %s", item)
	}
	return n > 0, nil
}

func (s *sqlStorage) RecordView(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO view_counts (sheet_key, views)
VALUES (?, 1)
ON CONFLICT (sheet_key) DO UPDATE SET views = view_counts.views + 1
`), key)
	return sqlErr.Wrapf(err, "record view %s", key)
}

func (s *sqlStorage) TopViewed(ctx context.Context, limit int) ([]model.ViewCount, error) {
	query := `SELECT sheet_key, views FROM view_counts ORDER BY views DESC, sheet_key ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, sqlErr.Wrapf(err, "top viewed")
	}
	defer rows.Close()

	out := []model.ViewCount{}
	for rows.Next() {
		var vc model.ViewCount
		if err := rows.Scan(&vc.Key, &vc.Views); err != nil {
			return nil, err
		}
		out = append(out, vc)
	}
	return out, rows.Err()
}

func (s *sqlStorage) Close() error {
	return s.db.Close()
}

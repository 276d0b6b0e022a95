package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sweetyshop/internal/menu"
)

// Dialect captures the few statements that differ between SQL engines.
type Dialect struct {
	name         string
	bodyType     string
	timeType     string
	insertPrefix string
	insertSuffix string
	numbered     bool
}

var (
	MySQL = Dialect{
		name:         "mysql",
		bodyType:     "LONGTEXT",
		timeType:     "DATETIME(3)",
		insertPrefix: "INSERT IGNORE INTO",
	}
	Postgres = Dialect{
		name:         "postgres",
		bodyType:     "TEXT",
		timeType:     "TIMESTAMPTZ",
		insertPrefix: "INSERT INTO",
		insertSuffix: " ON CONFLICT (doc_key) DO NOTHING",
		numbered:     true,
	}
	SQLite = Dialect{
		name:         "sqlite",
		bodyType:     "TEXT",
		timeType:     "DATETIME",
		insertPrefix: "INSERT OR IGNORE INTO",
	}
)

// bind rewrites ? placeholders to $n for engines that need numbered ones.
func (d Dialect) bind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore keeps the document as one row of menu_documents. The version
// column gives compare-and-swap writes.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	key     string
	now     func() time.Time
}

func NewSQLStore(db *sql.DB, dialect Dialect, key string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, key: key, now: time.Now}
}

func (s *SQLStore) Name() string { return s.dialect.name }

func (s *SQLStore) Close() error { return s.db.Close() }

// Migrate creates the menu_documents table when it is missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS menu_documents (
		doc_key VARCHAR(191) NOT NULL PRIMARY KEY,
		body %s NOT NULL,
		version BIGINT NOT NULL,
		updated_at %s NOT NULL
	)`, s.dialect.bodyType, s.dialect.timeType)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create menu_documents: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (Snapshot, error) {
	var (
		body    string
		version int64
	)
	q := s.dialect.bind("SELECT body, version FROM menu_documents WHERE doc_key = ?")
	err := s.db.QueryRowContext(ctx, q, s.key).Scan(&body, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("select menu document: %w", err)
	}

	var doc menu.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Snapshot{}, fmt.Errorf("decode menu document %q: %w", s.key, err)
	}
	return Snapshot{
		Document: doc,
		Revision: Revision(strconv.FormatInt(version, 10)),
		Found:    true,
	}, nil
}

func (s *SQLStore) Save(ctx context.Context, doc menu.Document, expected Revision) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode menu document: %w", err)
	}
	now := s.now().UTC()

	var res sql.Result
	if expected == "" {
		q := s.dialect.bind(s.dialect.insertPrefix + " menu_documents (doc_key, body, version, updated_at) VALUES (?, ?, 1, ?)" + s.dialect.insertSuffix)
		res, err = s.db.ExecContext(ctx, q, s.key, string(body), now)
	} else {
		version, convErr := strconv.ParseInt(string(expected), 10, 64)
		if convErr != nil {
			return fmt.Errorf("invalid revision %q: %w", expected, convErr)
		}
		q := s.dialect.bind("UPDATE menu_documents SET body = ?, version = version + 1, updated_at = ? WHERE doc_key = ? AND version = ?")
		res, err = s.db.ExecContext(ctx, q, string(body), now, s.key, version)
	}
	if err != nil {
		return fmt.Errorf("write menu document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write menu document: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// Package accesslog keeps a bounded history of proxied requests in SQLite.
package accesslog

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/pkg/errors"
)

// Outcome says how the proxy finished a request.
type Outcome string

const (
	OutcomeHit               Outcome = "hit"
	OutcomeMiss              Outcome = "miss"
	OutcomeUncacheable       Outcome = "uncacheable"
	OutcomeDropped           Outcome = "dropped"
	OutcomeUpstreamError     Outcome = "upstream_error"
	OutcomeUpstreamReadError Outcome = "upstream_read_error"
	OutcomeClientError       Outcome = "client_error"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Entry is one handled connection.
type Entry struct {
	Time    time.Time `json:"time"`
	Conn    uint64    `json:"conn"`
	Remote  string    `json:"remote"`
	Method  string    `json:"method"`
	URL     string    `json:"url"`
	Outcome Outcome   `json:"outcome"`
	Bytes   int64     `json:"bytes"`
}

type Store struct {
	db         *sql.DB
	limit      int
	writeMutex sync.Mutex
}

// Open creates the requests table in dsn if needed. At most limit rows are kept.
func Open(dsn string, limit int) (*Store, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open access log")
	}
	// a second connection to ":memory:" would see a different database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at INTEGER,
		conn INTEGER,
		remote TEXT,
		method TEXT,
		url TEXT,
		outcome TEXT,
		bytes INTEGER
	)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create requests table")
	}
	return &Store{db: db, limit: limit}, nil
}

// Record appends e and prunes rows beyond the retention limit.
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO requests (at, conn, remote, method, url, outcome, bytes) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.Time.UnixNano(), int64(e.Conn), e.Remote, e.Method, e.URL, string(e.Outcome), e.Bytes)
	if err != nil {
		return errors.Wrap(err, "insert access log entry")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "access log entry id")
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM requests WHERE id <= ?", id-int64(s.limit)); err != nil {
		return errors.Wrap(err, "prune access log")
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT at, conn, remote, method, url, outcome, bytes FROM requests ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, errors.Wrap(err, "query access log")
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e       Entry
			at      int64
			conn    int64
			outcome string
		)
		if err := rows.Scan(&at, &conn, &e.Remote, &e.Method, &e.URL, &outcome, &e.Bytes); err != nil {
			return nil, errors.Wrap(err, "scan access log")
		}
		e.Time = time.Unix(0, at)
		e.Conn = uint64(conn)
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "read access log")
}

func (s *Store) Close() error {
	return s.db.Close()
}

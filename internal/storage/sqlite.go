package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore 基于 SQLite (WAL 模式) 的持久化实现
// SQLiteStore implements Store using SQLite with WAL mode
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open 在 baseDir 下打开 msgdash.db
// Open opens msgdash.db under baseDir
func Open(baseDir string) (*SQLiteStore, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, fmt.Errorf("storage base dir is empty")
	}
	return NewSQLiteStore(filepath.Join(baseDir, "msgdash.db"))
}

// NewSQLiteStore 创建并初始化 SQLite 数据库
// NewSQLiteStore creates and initializes a SQLite database
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// 启用 WAL 模式和优化 PRAGMA / Enable WAL and performance PRAGMAs
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_cache (
		key        TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		stale      INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS view_state (
		name       TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_query_cache_fetched ON query_cache(fetched_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close 关闭数据库连接 / Close the database connection
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// --- Query Cache ---

func (s *SQLiteStore) PutQuery(entry QueryEntry) error {
	key := strings.TrimSpace(entry.Key)
	if key == "" {
		return fmt.Errorf("query key is empty")
	}
	fetchedAt := entry.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO query_cache (key, payload, fetched_at, stale)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, fetched_at=excluded.fetched_at, stale=excluded.stale`,
		key, string(entry.Payload), formatTime(fetchedAt), boolToInt(entry.Stale),
	)
	if err != nil {
		return fmt.Errorf("put query %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) LoadQuery(key string) (QueryEntry, bool, error) {
	row := s.db.QueryRow(`SELECT key, payload, fetched_at, stale FROM query_cache WHERE key=?`, key)

	var (
		entry     QueryEntry
		payload   string
		fetchedAt string
		stale     int
	)
	if err := row.Scan(&entry.Key, &payload, &fetchedAt, &stale); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QueryEntry{}, false, nil
		}
		return QueryEntry{}, false, fmt.Errorf("load query %s: %w", key, err)
	}
	t, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return QueryEntry{}, false, fmt.Errorf("parse fetched_at for %s: %w", key, err)
	}
	entry.Payload = []byte(payload)
	entry.FetchedAt = t
	entry.Stale = stale != 0
	return entry, true, nil
}

func (s *SQLiteStore) MarkStale(key string) error {
	if _, err := s.db.Exec(`UPDATE query_cache SET stale=1 WHERE key=?`, key); err != nil {
		return fmt.Errorf("mark stale %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) MarkStalePrefix(prefix string) error {
	// substr 比较避免 LIKE 通配符转义 / substr avoids escaping LIKE wildcards
	if _, err := s.db.Exec(`UPDATE query_cache SET stale=1 WHERE substr(key, 1, ?)=?`, len(prefix), prefix); err != nil {
		return fmt.Errorf("mark stale prefix %s: %w", prefix, err)
	}
	return nil
}

func (s *SQLiteStore) PurgeQueries(olderThan time.Time) (int, error) {
	res, err := s.db.Exec(`DELETE FROM query_cache WHERE fetched_at < ?`, formatTime(olderThan))
	if err != nil {
		return 0, fmt.Errorf("purge queries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// --- View State ---

func (s *SQLiteStore) SaveViewState(name string, v any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("view state name is empty")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal view state %s: %w", name, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO view_state (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		name, string(data), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save view state %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) LoadViewState(name string, v any) (bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM view_state WHERE name=?`, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load view state %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, fmt.Errorf("decode view state %s: %w", name, err)
	}
	return true, nil
}

// --- Helpers ---

// formatTime 使用固定宽度的 UTC 时间，保证字符串比较与时间顺序一致
// formatTime uses fixed-width UTC so string comparison matches time order
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

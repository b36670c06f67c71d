package session

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a SQLite-backed session store.
type SQLiteStore struct {
	db       *sql.DB
	maxTurns int
}

// NewSQLiteStore creates a new SQLite-backed store.
func NewSQLiteStore(dbPath string, maxTurns int) (*SQLiteStore, error) {
	if maxTurns <= 0 {
		maxTurns = 200
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{
		db:       db,
		maxTurns: maxTurns,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// migrate creates the database schema.
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AppendExchange commits one human/assistant pair in a single
// transaction so a crash never leaves a half-written cycle.
func (s *SQLiteStore) AppendExchange(id, question, answer string) error {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT OR IGNORE INTO sessions (id, created_at, updated_at)
		VALUES (?, ?, ?)
	`, id, now, now)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	var seq int
	err = tx.QueryRow(`
		SELECT COALESCE(MAX(seq), -1) + 1 FROM turns WHERE session_id = ?
	`, id).Scan(&seq)
	if err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	for i, turn := range []struct {
		role    Role
		content string
	}{
		{RoleHuman, question},
		{RoleAssistant, answer},
	} {
		turnID, _ := uuid.NewV7()
		_, err = tx.Exec(`
			INSERT INTO turns (id, session_id, seq, role, content, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`, turnID.String(), id, seq+i, string(turn.role), turn.content, now)
		if err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}

	_, err = tx.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	return tx.Commit()
}

// History retrieves the turns of a session in order. Once a session
// exceeds the cap, the newest turns win; the limit rounds down to an
// even count so a kept exchange is never split.
// Returns an empty slice if the session doesn't exist.
func (s *SQLiteStore) History(id string) []Turn {
	limit := s.maxTurns - s.maxTurns%2

	rows, err := s.db.Query(`
		SELECT role, content, timestamp FROM (
			SELECT seq, role, content, timestamp
			FROM turns
			WHERE session_id = ?
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, id, limit)
	if err != nil {
		return []Turn{}
	}
	defer rows.Close()

	turns := []Turn{}
	for rows.Next() {
		var t Turn
		var role string
		if err := rows.Scan(&role, &t.Content, &t.Timestamp); err != nil {
			continue
		}
		t.Role = Role(role)
		turns = append(turns, t)
	}

	return turns
}

// Get retrieves a session by id, or nil if not found.
func (s *SQLiteStore) Get(id string) *Session {
	row := s.db.QueryRow(`
		SELECT id, created_at, updated_at FROM sessions WHERE id = ?
	`, id)

	var sess Session
	if err := row.Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return nil
	}

	sess.Turns = s.History(id)
	return &sess
}

// Clear removes a session and its turns.
func (s *SQLiteStore) Clear(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.Exec(`DELETE FROM turns WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// Stats returns storage statistics.
func (s *SQLiteStore) Stats() map[string]any {
	var sessCount, turnCount int

	_ = s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&sessCount)
	_ = s.db.QueryRow(`SELECT COUNT(*) FROM turns`).Scan(&turnCount)

	return map[string]any{
		"sessions":        sessCount,
		"turns":           turnCount,
		"max_per_session": s.maxTurns,
		"storage":         "sqlite",
	}
}

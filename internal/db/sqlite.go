package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/luminagear/lumina-support/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    last_message TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    sender TEXT NOT NULL,
    text TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation_id
    ON messages(conversation_id);
CREATE INDEX IF NOT EXISTS idx_messages_conversation_timestamp
    ON messages(conversation_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_conversations_created_at
    ON conversations(created_at);`

// Store is the persistence facade over conversations and messages. It owns
// the transactional invariants: a message write and the parent
// conversation's last-message cache update are one atomic unit, as are a
// conversation delete and the removal of its messages.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at path and ensures the
// schema exists. The parent directory is created if missing.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", path, err)
	}

	// SQLite works best with a single writer connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: conn}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ListConversations returns every conversation, newest first.
func (s *Store) ListConversations() ([]models.Conversation, error) {
	rows, err := s.db.Query(`
        SELECT id, title, created_at, last_message
        FROM conversations
        ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.LastMessage); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// ListMessages returns the messages of a conversation in ascending
// timestamp order (insertion order breaks ties). When limit is positive,
// at most the earliest limit messages are returned. An unknown
// conversation id yields an empty slice, not an error.
func (s *Store) ListMessages(conversationID string, limit int) ([]models.Message, error) {
	query := `
        SELECT id, conversation_id, sender, text, timestamp
        FROM messages
        WHERE conversation_id = ?
        ORDER BY timestamp ASC, rowid ASC`
	args := []any{conversationID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// RecentMessages returns the most recent n messages of a conversation in
// chronological order. This is the history window the reply path uses, so
// long conversations keep their latest context rather than their oldest.
func (s *Store) RecentMessages(conversationID string, n int) ([]models.Message, error) {
	rows, err := s.db.Query(`
        SELECT id, conversation_id, sender, text, timestamp
        FROM (
            SELECT id, conversation_id, sender, text, timestamp, rowid AS rid
            FROM messages
            WHERE conversation_id = ?
            ORDER BY timestamp DESC, rid DESC
            LIMIT ?
        )
        ORDER BY timestamp ASC, rid ASC`, conversationID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Sender, &msg.Text, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CreateConversation inserts a conversation with the given id and title.
// Idempotent: if the id already exists the stored record is returned
// unchanged.
func (s *Store) CreateConversation(id, title string, createdAt int64) (*models.Conversation, error) {
	_, err := s.db.Exec(`
        INSERT INTO conversations (id, title, created_at, last_message)
        VALUES (?, ?, ?, '')
        ON CONFLICT(id) DO NOTHING`, id, title, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	conv := &models.Conversation{}
	err = s.db.QueryRow(`
        SELECT id, title, created_at, last_message
        FROM conversations WHERE id = ?`, id).
		Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.LastMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation %s: %w", id, err)
	}
	return conv, nil
}

// SaveMessage upserts a message by id and refreshes the parent
// conversation's last-message cache in the same transaction. A reader
// never observes the message without the cache update or vice versa.
func (s *Store) SaveMessage(msg *models.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
        INSERT INTO messages (id, conversation_id, sender, text, timestamp)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET text = excluded.text, timestamp = excluded.timestamp`,
		msg.ID, msg.ConversationID, msg.Sender, msg.Text, msg.Timestamp); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	if _, err := tx.Exec(`
        UPDATE conversations SET last_message = ? WHERE id = ?`,
		msg.Text, msg.ConversationID); err != nil {
		return fmt.Errorf("failed to update last message: %w", err)
	}

	return tx.Commit()
}

// DeleteConversation removes a conversation and all its messages in one
// transaction. Deleting an unknown id is a no-op.
func (s *Store) DeleteConversation(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The FK cascade would cover this, but being explicit keeps the delete
	// correct even without the foreign_keys pragma.
	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM conversations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	return tx.Commit()
}

package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"ragchat/internal/models"
)

// Database archives conversations and their messages in SQLite
type Database struct {
	db *sql.DB
}

// NewDatabase opens (creating if needed) the archive at dbPath
func NewDatabase(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	database := &Database{db: db}
	if err := database.createTables(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating tables")
	}

	return database, nil
}

func (d *Database) createTables() error {
	conversationsTable := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		last_message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	messagesTable := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		sender TEXT NOT NULL,
		content TEXT NOT NULL,
		sources TEXT NOT NULL DEFAULT '[]',
		attachments TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		PRIMARY KEY (conversation_id, seq),
		FOREIGN KEY (conversation_id) REFERENCES conversations (id) ON DELETE CASCADE
	);`

	indexTable := `
	CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at DESC);`

	for _, query := range []string{conversationsTable, messagesTable, indexTable} {
		if _, err := d.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// SaveConversation writes the summary and replaces all of its messages
func (d *Database) SaveConversation(summary models.Summary, messages []models.Message) error {
	tx, err := d.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	ts := summary.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, last_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			last_message = excluded.last_message,
			updated_at = excluded.updated_at`,
		summary.ID, summary.Name, summary.LastMessage, ts, ts)
	if err != nil {
		return errors.Wrap(err, "upserting conversation")
	}

	if _, err = tx.Exec("DELETE FROM messages WHERE conversation_id = ?", summary.ID); err != nil {
		return errors.Wrap(err, "clearing messages")
	}

	for i, msg := range messages {
		sources, err := json.Marshal(nonNil(msg.Sources))
		if err != nil {
			return errors.Wrap(err, "encoding sources")
		}
		attachments, err := json.Marshal(nonNil(msg.Attachments))
		if err != nil {
			return errors.Wrap(err, "encoding attachments")
		}
		_, err = tx.Exec(`
			INSERT INTO messages (id, conversation_id, seq, sender, content, sources, attachments, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, summary.ID, i, msg.Sender.String(), msg.Content, string(sources), string(attachments), msg.Timestamp)
		if err != nil {
			return errors.Wrapf(err, "inserting message %d", i)
		}
	}

	return errors.Wrap(tx.Commit(), "committing conversation")
}

// LoadConversations returns every archived conversation, most recently
// updated first
func (d *Database) LoadConversations() ([]models.Conversation, error) {
	rows, err := d.db.Query(`
		SELECT id, title, last_message, updated_at
		FROM conversations
		ORDER BY updated_at DESC, created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying conversations")
	}

	var conversations []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.Name, &conv.LastMessage, &conv.Timestamp); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scanning conversation")
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "iterating conversations")
	}
	rows.Close()

	for i := range conversations {
		messages, err := d.loadMessages(conversations[i].ID)
		if err != nil {
			return nil, err
		}
		conversations[i].Messages = messages
	}

	return conversations, nil
}

func (d *Database) loadMessages(conversationID string) ([]models.Message, error) {
	rows, err := d.db.Query(`
		SELECT id, sender, content, sources, attachments, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq ASC`,
		conversationID)
	if err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var (
			msg                          models.Message
			sender, sources, attachments string
		)
		if err := rows.Scan(&msg.ID, &sender, &msg.Content, &sources, &attachments, &msg.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scanning message")
		}
		if msg.Sender, err = models.ParseSender(sender); err != nil {
			return nil, errors.Wrapf(err, "message %s", msg.ID)
		}
		if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
			return nil, errors.Wrapf(err, "decoding sources of %s", msg.ID)
		}
		if err := json.Unmarshal([]byte(attachments), &msg.Attachments); err != nil {
			return nil, errors.Wrapf(err, "decoding attachments of %s", msg.ID)
		}
		if len(msg.Sources) == 0 {
			msg.Sources = nil
		}
		if len(msg.Attachments) == 0 {
			msg.Attachments = nil
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

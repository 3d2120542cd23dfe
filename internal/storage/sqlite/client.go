package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/profile-chat/backend/internal/storage/models"
	"github.com/profile-chat/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		locale TEXT NOT NULL,
		question TEXT NOT NULL,
		reply TEXT NOT NULL,
		top_anchor_id TEXT,
		top_score REAL,
		hit_count INTEGER,
		used_fallback INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertExchange(record *models.ExchangeRecord) error {
	query := `
		INSERT INTO exchanges (id, session_id, locale, question, reply, top_anchor_id,
			top_score, hit_count, used_fallback, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	usedFallback := 0
	if record.UsedFallback {
		usedFallback = 1
	}

	_, err := c.db.Exec(
		query,
		record.ID,
		record.SessionID,
		record.Locale,
		record.Question,
		record.Reply,
		record.TopAnchorID,
		record.TopScore,
		record.HitCount,
		usedFallback,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}

	logger.Debug("Exchange recorded",
		zap.String("exchange_id", record.ID),
		zap.String("session_id", record.SessionID),
	)

	return nil
}

func (c *Client) ListBySession(sessionID string, limit int) ([]models.ExchangeRecord, error) {
	query := `
		SELECT id, session_id, locale, question, reply, top_anchor_id,
			top_score, hit_count, used_fallback, latency_ms, created_at
		FROM exchanges
		WHERE session_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	var records []models.ExchangeRecord
	for rows.Next() {
		var r models.ExchangeRecord
		var usedFallback int
		var createdAt int64

		err := rows.Scan(
			&r.ID,
			&r.SessionID,
			&r.Locale,
			&r.Question,
			&r.Reply,
			&r.TopAnchorID,
			&r.TopScore,
			&r.HitCount,
			&usedFallback,
			&r.LatencyMS,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.UsedFallback = usedFallback != 0
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return records, nil
}

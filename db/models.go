package db

import (
	"database/sql"
	"fmt"
	"time"
)

// UserConfig holds per-user search localization preferences
type UserConfig struct {
	UserID    int64
	Country   string
	Language  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Search represents a queued search request from a Telegram user
type Search struct {
	ID                int
	UserID            int64
	TelegramMessageID int
	Term              string
	Status            string
	TotalCount        int
	SheetName         string
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Search statuses
const (
	StatusCreated    = "created"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// GetUserConfig retrieves the config for a user, creating defaults if none exists
func (db *DB) GetUserConfig(userID int64) (*UserConfig, error) {
	cfg := &UserConfig{}
	err := db.conn.QueryRow(`
		SELECT user_id, country, language, created_at, updated_at
		FROM user_configs WHERE user_id = $1`, userID).
		Scan(&cfg.UserID, &cfg.Country, &cfg.Language, &cfg.CreatedAt, &cfg.UpdatedAt)

	if err == sql.ErrNoRows {
		// Create default config for new user
		err = db.conn.QueryRow(`
			INSERT INTO user_configs (user_id) VALUES ($1)
			RETURNING user_id, country, language, created_at, updated_at`, userID).
			Scan(&cfg.UserID, &cfg.Country, &cfg.Language, &cfg.CreatedAt, &cfg.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create default user config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user config: %w", err)
	}
	return cfg, nil
}

// UpdateUserConfig updates the given fields of a user's config. Nil fields
// are left unchanged.
func (db *DB) UpdateUserConfig(userID int64, country, language *string) error {
	if _, err := db.GetUserConfig(userID); err != nil {
		return err
	}

	if country != nil {
		_, err := db.conn.Exec(`
			UPDATE user_configs SET country = $1, updated_at = NOW() WHERE user_id = $2`,
			*country, userID)
		if err != nil {
			return fmt.Errorf("failed to update country: %w", err)
		}
	}
	if language != nil {
		_, err := db.conn.Exec(`
			UPDATE user_configs SET language = $1, updated_at = NOW() WHERE user_id = $2`,
			*language, userID)
		if err != nil {
			return fmt.Errorf("failed to update language: %w", err)
		}
	}
	return nil
}

// CreateSearch queues a new search request
func (db *DB) CreateSearch(userID int64, telegramMessageID int, term string) (*Search, error) {
	s := &Search{}
	err := db.conn.QueryRow(`
		INSERT INTO searches (user_id, telegram_message_id, term)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, telegram_message_id, term, status, total_count, sheet_name, error_message, created_at, updated_at`,
		userID, telegramMessageID, term).
		Scan(&s.ID, &s.UserID, &s.TelegramMessageID, &s.Term, &s.Status,
			&s.TotalCount, &s.SheetName, &s.ErrorMessage, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create search: %w", err)
	}
	return s, nil
}

// GetNextCreatedSearch returns the oldest search still in 'created' status,
// or nil if the queue is empty
func (db *DB) GetNextCreatedSearch() (*Search, error) {
	s := &Search{}
	err := db.conn.QueryRow(`
		SELECT id, user_id, telegram_message_id, term, status, total_count, sheet_name, error_message, created_at, updated_at
		FROM searches
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT 1`, StatusCreated).
		Scan(&s.ID, &s.UserID, &s.TelegramMessageID, &s.Term, &s.Status,
			&s.TotalCount, &s.SheetName, &s.ErrorMessage, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next search: %w", err)
	}
	return s, nil
}

// UpdateSearchStatus updates the status of a search
func (db *DB) UpdateSearchStatus(id int, status string) error {
	_, err := db.conn.Exec(`
		UPDATE searches SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("failed to update search status: %w", err)
	}
	return nil
}

// UpdateSearchError marks a search as failed with an error message
func (db *DB) UpdateSearchError(id int, message string) error {
	_, err := db.conn.Exec(`
		UPDATE searches SET status = $1, error_message = $2, updated_at = NOW() WHERE id = $3`,
		StatusFailed, message, id)
	if err != nil {
		return fmt.Errorf("failed to update search error: %w", err)
	}
	return nil
}

// UpdateSearchTotal records how many offers a completed search found
func (db *DB) UpdateSearchTotal(id int, total int) error {
	_, err := db.conn.Exec(`
		UPDATE searches SET total_count = $1, updated_at = NOW() WHERE id = $2`,
		total, id)
	if err != nil {
		return fmt.Errorf("failed to update search total: %w", err)
	}
	return nil
}

// UpdateSearchSheetName records the spreadsheet tab a search was exported to
func (db *DB) UpdateSearchSheetName(id int, sheetName string) error {
	_, err := db.conn.Exec(`
		UPDATE searches SET sheet_name = $1, updated_at = NOW() WHERE id = $2`,
		sheetName, id)
	if err != nil {
		return fmt.Errorf("failed to update search sheet name: %w", err)
	}
	return nil
}

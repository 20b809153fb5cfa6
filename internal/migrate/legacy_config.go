package migrate

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
)

// legacyConfig is the pre-v5 config.json layout
type legacyConfig struct {
	AdminID     json.RawMessage `json:"admin_id"`
	Token       string          `json:"token"`
	ClientToken string          `json:"client_token"`
	Lang        string          `json:"lang"`
	URL         string          `json:"url"`
}

// migrateLegacyConfig folds a pre-v5 config.json into the str_config
// and servers tables and removes the file. A missing or unreadable
// file is skipped; the bot may never have had one.
func (m *Migrator) migrateLegacyConfig(ctx context.Context, tx *sql.Tx) error {
	path := filepath.Join(m.installDir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var legacy legacyConfig
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS str_config (
			key TEXT PRIMARY KEY,
			value TEXT
		)`); err != nil {
		return err
	}

	adminID := "[]"
	if len(legacy.AdminID) > 0 {
		adminID = string(legacy.AdminID)
	}
	lang := legacy.Lang
	if lang == "" {
		lang = "FA"
	}

	values := map[string]string{
		"bot_admin_id":     adminID,
		"bot_token_admin":  legacy.Token,
		"bot_token_client": legacy.ClientToken,
		"bot_lang":         lang,
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO str_config (key, value) VALUES (?, ?)",
			key, value); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS servers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL,
			title TEXT,
			description TEXT,
			default_server BOOLEAN NOT NULL DEFAULT 0,
			user_limit INTEGER,
			status BOOLEAN DEFAULT 1
		)`); err != nil {
		return err
	}

	if legacy.URL != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO servers
				(url, title, default_server, user_limit, status)
				VALUES (?, ?, ?, ?, ?)`,
			legacy.URL, "Main Server", true, 2000, true); err != nil {
			return err
		}
	}

	os.Remove(path)
	return nil
}

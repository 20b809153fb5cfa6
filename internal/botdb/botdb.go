// Package botdb provides read-only access to the managed bot's database
package botdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Credentials are the admin-bot settings stored in the bot's
// str_config table.
type Credentials struct {
	AdminToken string
	AdminIDs   []int64
}

// AdminCredentials reads the admin bot token and admin chat IDs from
// the bot database at dbPath.
func AdminCredentials(dbPath string) (*Credentials, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	values, err := readStrConfig(db, "bot_token_admin", "bot_admin_id")
	if err != nil {
		return nil, err
	}

	creds := &Credentials{AdminToken: values["bot_token_admin"]}
	if creds.AdminToken == "" {
		return nil, fmt.Errorf("bot_token_admin not configured")
	}

	if raw := values["bot_admin_id"]; raw != "" {
		// Stored as a JSON array; a bare integer is tolerated
		if err := json.Unmarshal([]byte(raw), &creds.AdminIDs); err != nil {
			var single int64
			if err := json.Unmarshal([]byte(raw), &single); err != nil {
				return nil, fmt.Errorf("parse bot_admin_id %q: %w", raw, err)
			}
			creds.AdminIDs = []int64{single}
		}
	}
	if len(creds.AdminIDs) == 0 {
		return nil, fmt.Errorf("no admin IDs configured")
	}

	return creds, nil
}

func readStrConfig(db *sql.DB, keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		var value string
		err := db.QueryRow(
			"SELECT value FROM str_config WHERE key = ?", key).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read str_config %s: %w", key, err)
		}
		values[key] = value
	}
	return values, nil
}

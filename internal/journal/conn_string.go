package journal

import (
	"fmt"
	"net/url"

	"github.com/rickgao/bpx-grid/internal/config"
)

// buildConnString builds a PostgreSQL connection string from config.
func buildConnString(cfg config.JournalConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

package sqldb

import (
	"fmt"
	"strings"

	"github.com/datakamer/datakamer-backend/config"
)

// DSN returns the configured DSN, or builds a key/value postgres DSN from the
// individual connection settings.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		if DialectFor(cfg.Driver) == SQLite {
			return sqliteDSN(cfg.DSN)
		}
		return cfg.DSN
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode,
	)
}

// sqliteDSN turns on foreign keys for every pooled connection; cascades depend on it.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

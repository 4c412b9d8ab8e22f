// internal/sink/schema.go
package sink

import (
	"context"
	"fmt"

	"github.com/tamzrod/modbus-datalogger/internal/config"
)

// QuoteIdent validates a device name and returns it as a quoted SQL identifier.
// Names are never spliced into SQL unquoted. ValidateDestinationName rejects
// double quotes, so wrapping is enough to keep the identifier closed.
func QuoteIdent(name string) (string, error) {
	if err := config.ValidateDestinationName(name); err != nil {
		return "", fmt.Errorf("destination %q: %w", name, err)
	}
	return `"` + name + `"`, nil
}

// Bootstrap creates the destination table of every device if it does not
// exist yet. It runs once at startup, before any poller.
func Bootstrap(ctx context.Context, db execer, devices []string) error {
	for _, name := range devices {
		table, err := QuoteIdent(name)
		if err != nil {
			return fmt.Errorf("sink: bootstrap: %w", err)
		}

		stmt := "CREATE TABLE IF NOT EXISTS " + table + ` (
	id INTEGER PRIMARY KEY,
	timestamp INTEGER NOT NULL,
	tag TEXT NOT NULL,
	description TEXT NOT NULL,
	value REAL
)`
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sink: bootstrap table %s: %w", table, err)
		}
	}
	return nil
}

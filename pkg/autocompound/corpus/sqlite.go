package corpus

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
)

// LoadSQLite runs query against the SQLite database at dsn. The query must
// return exactly one column; NULL values become nil blocks.
func LoadSQLite(ctx context.Context, dsn, query string) ([]*string, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite corpus %s: %w", dsn, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sqlite corpus: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) != 1 {
		return nil, fmt.Errorf("%w: corpus query returns %d columns, want 1", internalerr.ErrInvalidInput, len(cols))
	}

	var blocks []*string
	for rows.Next() {
		var text sql.NullString
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}
		if !text.Valid {
			blocks = append(blocks, nil)
			continue
		}
		s := text.String
		blocks = append(blocks, &s)
	}
	return blocks, rows.Err()
}

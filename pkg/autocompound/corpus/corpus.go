// Package corpus reads text blocks for extraction from files and
// databases. A nil block marks a missing entry; the extractor skips it.
package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
)

// Corpus kinds accepted by Load.
const (
	KindLines  = "lines"
	KindJSONL  = "jsonl"
	KindHTML   = "html"
	KindSQLite = "sqlite"
)

// DefaultField is the JSONL field read when Source.Field is empty.
const DefaultField = "text"

// Source describes where a corpus lives.
type Source struct {
	Path  string
	Kind  string // one of the Kind constants; empty infers it from Path
	Field string // JSONL field holding the text
	Query string // SQLite query returning one text column

	// Logger receives warnings about skipped records. Nil discards them.
	Logger *slog.Logger
}

// Load reads the blocks described by src.
func Load(ctx context.Context, src Source) ([]*string, error) {
	kind := src.Kind
	if kind == "" {
		kind = KindOf(src.Path)
	}
	logger := src.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch kind {
	case KindLines:
		return LoadLines(src.Path)
	case KindJSONL:
		return LoadJSONL(src.Path, src.Field, logger)
	case KindHTML:
		return LoadHTML(src.Path)
	case KindSQLite:
		if src.Query == "" {
			return nil, fmt.Errorf("%w: sqlite corpus needs a query", internalerr.ErrInvalidInput)
		}
		return LoadSQLite(ctx, src.Path, src.Query)
	default:
		return nil, fmt.Errorf("%w: unknown corpus kind %q", internalerr.ErrInvalidInput, kind)
	}
}

// KindOf infers the corpus kind from a file name, looking through a
// trailing .zst or .lz4 extension.
func KindOf(path string) string {
	name := strings.ToLower(path)
	switch filepath.Ext(name) {
	case extZstd, extLZ4:
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	switch filepath.Ext(name) {
	case ".jsonl", ".ndjson":
		return KindJSONL
	case ".html", ".htm":
		return KindHTML
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindLines
	}
}

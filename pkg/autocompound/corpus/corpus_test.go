package corpus

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func texts(blocks []*string) []any {
	out := make([]any, len(blocks))
	for i, b := range blocks {
		if b != nil {
			out[i] = *b
		}
	}
	return out
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func lz4Bytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"corpus.txt", KindLines},
		{"corpus", KindLines},
		{"items.jsonl", KindJSONL},
		{"items.NDJSON", KindJSONL},
		{"items.jsonl.zst", KindJSONL},
		{"page.html.lz4", KindHTML},
		{"page.htm", KindHTML},
		{"news.db", KindSQLite},
		{"news.sqlite3", KindSQLite},
		{"corpus.txt.zst", KindLines},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.path))
		})
	}
}

func TestLoadLines(t *testing.T) {
	path := writeFile(t, "corpus.txt", []byte("the quick brown fox\n\n   \nnew york city\n"))
	blocks, err := LoadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []any{"the quick brown fox", nil, nil, "new york city"}, texts(blocks))
}

func TestLoadLinesCompressed(t *testing.T) {
	data := []byte("alpha beta\ngamma delta\n")
	for name, enc := range map[string]func(*testing.T, []byte) []byte{
		"corpus.txt.zst": zstdBytes,
		"corpus.txt.lz4": lz4Bytes,
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, enc(t, data))
			blocks, err := LoadLines(path)
			require.NoError(t, err)
			assert.Equal(t, []any{"alpha beta", "gamma delta"}, texts(blocks))
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpenCloseTwice(t *testing.T) {
	path := writeFile(t, "corpus.txt.zst", zstdBytes(t, []byte("x")))
	rc, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Error(t, rc.Close())
}

func TestLoadJSONL(t *testing.T) {
	data := `{"text": "first item"}
{"title": "no text"}
{"text": null}
not json at all

{"text": 42}
{"text": "last item", "body": "other"}
`
	path := writeFile(t, "items.jsonl", []byte(data))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	blocks, err := LoadJSONL(path, "", logger)
	require.NoError(t, err)
	assert.Equal(t, []any{"first item", nil, nil, "last item"}, texts(blocks))
	assert.Contains(t, logs.String(), "skipping malformed JSON")
	assert.Contains(t, logs.String(), "skipping non-string field")

	blocks, err = LoadJSONL(path, "body", logger)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil, nil, nil, "other"}, texts(blocks))
}

func TestLoadHTML(t *testing.T) {
	page := `<!doctype html>
<html><head><title>Sample Page</title>
<style>p { color: red }</style>
<script>var machineLearning = 1;</script></head>
<body>
<h1>Machine learning</h1>
<p>Open source <b>machine learning</b> tools.</p>
<ul><li>new york</li><li>data   center</li></ul>
<div>plain<br>broken</div>
</body></html>`
	path := writeFile(t, "page.html", []byte(page))

	blocks, err := LoadHTML(path)
	require.NoError(t, err)
	assert.Equal(t, []any{
		"Sample Page",
		"Machine learning",
		"Open source machine learning tools.",
		"new york",
		"data center",
		"plain",
		"broken",
	}, texts(blocks))
}

func TestLoadSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "news.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE docs (id INTEGER PRIMARY KEY, body TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO docs (id, body) VALUES (1, 'new york city'), (2, NULL), (3, 'data center')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	blocks, err := LoadSQLite(ctx, path, `SELECT body FROM docs ORDER BY id`)
	require.NoError(t, err)
	assert.Equal(t, []any{"new york city", nil, "data center"}, texts(blocks))

	_, err = LoadSQLite(ctx, path, `SELECT id, body FROM docs`)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

	_, err = LoadSQLite(ctx, path, `SELECT nope FROM missing`)
	assert.Error(t, err)
}

func TestLoadDispatch(t *testing.T) {
	ctx := context.Background()
	lines := writeFile(t, "corpus.txt", []byte("one line\n"))
	jsonl := writeFile(t, "items.jsonl.zst", zstdBytes(t, []byte(`{"body":"from json"}`+"\n")))

	blocks, err := Load(ctx, Source{Path: lines})
	require.NoError(t, err)
	assert.Equal(t, []any{"one line"}, texts(blocks))

	blocks, err = Load(ctx, Source{Path: jsonl, Field: "body"})
	require.NoError(t, err)
	assert.Equal(t, []any{"from json"}, texts(blocks))

	blocks, err = Load(ctx, Source{Path: lines, Kind: KindJSONL})
	require.NoError(t, err)
	assert.Empty(t, blocks, "plain text is not JSON")

	_, err = Load(ctx, Source{Path: "news.db"})
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

	_, err = Load(ctx, Source{Path: lines, Kind: "xml"})
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestFingerprint(t *testing.T) {
	a, b, empty := "alpha", "beta", ""

	fp := Fingerprint([]*string{&a, &b})
	assert.Len(t, fp, 64)
	assert.Equal(t, fp, Fingerprint([]*string{&a, &b}))
	assert.NotEqual(t, fp, Fingerprint([]*string{&b, &a}), "order matters")

	ab := "alphabeta"
	assert.NotEqual(t, Fingerprint([]*string{&ab}), fp, "block boundaries matter")
	assert.NotEqual(t, Fingerprint([]*string{nil}), Fingerprint([]*string{&empty}))
	assert.NotEqual(t, Fingerprint(nil), Fingerprint([]*string{nil}))
}

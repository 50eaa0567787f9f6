package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// LoadJSONL reads one JSON object per line and takes the string in field
// (DefaultField when empty) as the block. A missing or null field gives a
// nil block. Malformed lines and non-string values are logged and
// skipped.
func LoadJSONL(path, field string, logger *slog.Logger) ([]*string, error) {
	if field == "" {
		field = DefaultField
	}
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var blocks []*string
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var rec map[string]json.RawMessage
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("skipping malformed JSON", "path", path, "line", n, "err", err)
			continue
		}
		raw, ok := rec[field]
		if !ok || string(raw) == "null" {
			blocks = append(blocks, nil)
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			logger.Warn("skipping non-string field", "path", path, "line", n, "field", field)
			continue
		}
		blocks = append(blocks, &text)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return blocks, nil
}

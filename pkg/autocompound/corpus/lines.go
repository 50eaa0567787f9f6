package corpus

import (
	"bufio"
	"fmt"
	"strings"
)

// maxLine bounds a single line of a lines or JSONL corpus.
const maxLine = 16 << 20

// LoadLines reads one block per line. Blank lines become nil blocks.
func LoadLines(path string) ([]*string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var blocks []*string
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			blocks = append(blocks, nil)
			continue
		}
		blocks = append(blocks, &line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return blocks, nil
}

// Package report renders extraction results for people and for other
// programs.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/autocompound/pkg/autocompound"
	"github.com/cognicore/autocompound/pkg/autocompound/config"
	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
)

// Output formats accepted by Write.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatCBOR    = "cbor"
	FormatMsgpack = "msgpack"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatCBOR, FormatMsgpack}

var cborMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	cborMode, err = opts.EncMode()
	if err != nil {
		panic("report: CBOR encoder initialization failed: " + err.Error())
	}
}

// Report is the serializable record of one run.
type Report struct {
	RunID        string                    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	CreatedAt    time.Time                 `json:"created_at" yaml:"created_at"`
	Fingerprint  string                    `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Config       config.Config             `json:"config" yaml:"config"`
	SubSentences int                       `json:"sub_sentences" yaml:"sub_sentences"`
	Compounds    []string                  `json:"compounds" yaml:"compounds"`
	Thresholds   map[int]float64           `json:"thresholds" yaml:"thresholds"`
	Drops        map[int]bool              `json:"drops" yaml:"drops"`
	Passes       []autocompound.Pass       `json:"passes,omitempty" yaml:"passes,omitempty"`
	Trace        []autocompound.TracePoint `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// New builds a report from a result.
func New(cfg config.Config, res *autocompound.Result) *Report {
	return &Report{
		CreatedAt:    time.Now().UTC(),
		Config:       cfg,
		SubSentences: res.SubSentences,
		Compounds:    res.Phrases(),
		Thresholds:   res.Thresholds,
		Drops:        res.Drops,
		Passes:       res.Passes,
		Trace:        res.Trace,
	}
}

// Write encodes r to w in the given format.
func Write(w io.Writer, format string, r *Report) error {
	switch format {
	case FormatText, "":
		return writeText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		return cborMode.NewEncoder(w).Encode(r)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		enc.SetSortMapKeys(true)
		return enc.Encode(r)
	default:
		return fmt.Errorf("%w: unknown report format %q (want %s)",
			internalerr.ErrInvalidInput, format, strings.Join(Formats, ", "))
	}
}

// writeText prints one compound per line in phrase order.
func writeText(w io.Writer, r *Report) error {
	phrases := append([]string(nil), r.Compounds...)
	sort.Strings(phrases)

	bw := bufio.NewWriter(w)
	for _, p := range phrases {
		bw.WriteString(p)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Summary returns a one-line description of r. Dropped windows are read
// from Drops; the skipped count needs per-pass detail and is left out of
// reports that carry none, such as runs read back from history.
func Summary(r *Report) string {
	var dropped, skipped int
	for _, d := range r.Drops {
		if d {
			dropped++
		}
	}
	for _, p := range r.Passes {
		if p.Skipped != "" {
			skipped++
		}
	}
	noun := "compounds"
	if len(r.Compounds) == 1 {
		noun = "compound"
	}
	line := fmt.Sprintf("%s %s from %s sub-sentences; %d windows thresholded, %d dropped",
		humanize.Comma(int64(len(r.Compounds))), noun,
		humanize.Comma(int64(r.SubSentences)),
		len(r.Thresholds), dropped)
	if len(r.Passes) > 0 {
		line += fmt.Sprintf(", %d skipped", skipped)
	}
	return line
}

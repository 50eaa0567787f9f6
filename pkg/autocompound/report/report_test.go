package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/autocompound/pkg/autocompound"
	"github.com/cognicore/autocompound/pkg/autocompound/config"
	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
	"github.com/cognicore/autocompound/pkg/autocompound/ngram"
)

func sampleReport() *Report {
	res := &autocompound.Result{
		Compounds:  []ngram.Compound{{"machine", "learning"}, {"new", "york", "city"}},
		Thresholds: map[int]float64{3: 0.25, 2: 5.5},
		Drops:      map[int]bool{3: false, 2: true},
		Passes: []autocompound.Pass{
			{Context: 4, Skipped: "empty frequency distribution", Err: internalerr.ErrEmptyDistribution},
			{Context: 3, Windows: 665, Distinct: 111, Threshold: 0.25, Survivors: 1},
			{Context: 2, Windows: 330, Distinct: 220, Threshold: 5.5, Dropped: true},
		},
		SubSentences: 1665,
	}
	r := New(config.Default(), res)
	r.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.RunID = "01HWX7J6Q3N8ZK4T2V5B9C0D1E"
	return r
}

func TestWriteText(t *testing.T) {
	r := sampleReport()
	r.Compounds = []string{"zebra crossing", "new york city", "machine learning"}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, r))
	assert.Equal(t, "machine learning\nnew york city\nzebra crossing\n", buf.String())
	assert.Equal(t, "zebra crossing", r.Compounds[0], "text output must not reorder the report")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []any{"machine learning", "new york city"}, got["compounds"])
	assert.Equal(t, map[string]any{"2": 5.5, "3": 0.25}, got["thresholds"])
	assert.Equal(t, float64(10), got["config"].(map[string]any)["max_context"])

	passes := got["passes"].([]any)
	require.Len(t, passes, 3)
	first := passes[0].(map[string]any)
	assert.Equal(t, "empty frequency distribution", first["skipped"])
	assert.NotContains(t, first, "Err")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleReport()))

	var got struct {
		RunID     string          `yaml:"run_id"`
		Compounds []string        `yaml:"compounds"`
		Drops     map[int]bool    `yaml:"drops"`
		Thresh    map[int]float64 `yaml:"thresholds"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "01HWX7J6Q3N8ZK4T2V5B9C0D1E", got.RunID)
	assert.Equal(t, []string{"machine learning", "new york city"}, got.Compounds)
	assert.Equal(t, map[int]float64{3: 0.25, 2: 5.5}, got.Thresh)
}

func TestWriteCBORDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Write(&a, FormatCBOR, sampleReport()))
	require.NoError(t, Write(&b, FormatCBOR, sampleReport()))
	assert.Equal(t, a.Bytes(), b.Bytes())

	var got struct {
		Compounds []string        `cbor:"compounds"`
		Thresh    map[int]float64 `cbor:"thresholds"`
		CreatedAt string          `cbor:"created_at"`
	}
	require.NoError(t, cbor.Unmarshal(a.Bytes(), &got))
	assert.Equal(t, []string{"machine learning", "new york city"}, got.Compounds)
	assert.Equal(t, map[int]float64{3: 0.25, 2: 5.5}, got.Thresh)
	assert.Equal(t, "2024-05-01T12:00:00Z", got.CreatedAt)
}

func TestWriteMsgpack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatMsgpack, sampleReport()))

	var got struct {
		Compounds    []string `msgpack:"compounds"`
		SubSentences int      `msgpack:"sub_sentences"`
	}
	require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"machine learning", "new york city"}, got.Compounds)
	assert.Equal(t, 1665, got.SubSentences)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", sampleReport())
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestSummary(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "2 compounds from 1,665 sub-sentences; 2 windows thresholded, 1 dropped, 1 skipped", Summary(r))

	// a run read back from history has drops but no passes
	r.Compounds = r.Compounds[:1]
	r.Passes = nil
	assert.Equal(t, "1 compound from 1,665 sub-sentences; 2 windows thresholded, 1 dropped", Summary(r))

	r.Drops = map[int]bool{3: false, 2: false}
	assert.Equal(t, "1 compound from 1,665 sub-sentences; 2 windows thresholded, 0 dropped", Summary(r))
}

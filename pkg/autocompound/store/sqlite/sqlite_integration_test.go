package sqlite

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cognicore/autocompound/pkg/autocompound"
	"github.com/cognicore/autocompound/pkg/autocompound/config"
	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
	"github.com/cognicore/autocompound/pkg/autocompound/store"
)

func openTemp(t *testing.T) (store.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	st, err := OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, dbPath
}

func sampleRun(id string, at time.Time, fp string) store.RunRecord {
	cfg := config.Default()
	cfg.ExtraStops = []string{"via"}
	return store.RunRecord{
		ID:          id,
		StartedAt:   at,
		Source:      "corpus.txt",
		Fingerprint: fp,
		Config:      cfg,
		Compounds:   []string{"machine learning", "new york city"},
		Thresholds:  map[int]float64{3: 0.25, 2: 5.5},
		Drops:       map[int]bool{3: false, 2: true},
		Trace: []autocompound.TracePoint{
			{Context: 3, Threshold: 0, Total: 7, FracRemoved: 0, Delta: 1},
			{Context: 3, Threshold: 0.25, Total: 1, FracRemoved: 6.0 / 7.0, Delta: 1},
		},
	}
}

// TestSQLiteIntegrationBasic tests saving and loading a run
func TestSQLiteIntegrationBasic(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	at := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)
	want := sampleRun("01HWX7J6Q3N8ZK4T2V5B9C0D1E", at, "fp1")
	if err := st.SaveRun(ctx, want); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := st.GetRun(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.StartedAt.Equal(at) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, at)
	}
	if got.Source != want.Source || got.Fingerprint != want.Fingerprint {
		t.Errorf("identity mismatch: %+v", got)
	}
	if got.Config.MaxContext != 10 || len(got.Config.ExtraStops) != 1 || got.Config.ExtraStops[0] != "via" {
		t.Errorf("config mismatch: %+v", got.Config)
	}
	if len(got.Compounds) != 2 || got.Compounds[1] != "new york city" {
		t.Errorf("compounds mismatch: %v", got.Compounds)
	}
	if got.Thresholds[2] != 5.5 || !got.Drops[2] || got.Drops[3] {
		t.Errorf("registry mismatch: %v %v", got.Thresholds, got.Drops)
	}
	if len(got.Trace) != 2 || got.Trace[1] != want.Trace[1] {
		t.Errorf("trace mismatch: %+v", got.Trace)
	}
}

func TestSQLiteErrors(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	if err := st.SaveRun(ctx, store.RunRecord{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("empty ID: got %v", err)
	}
	run := sampleRun("a", time.Now(), "fp")
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := st.SaveRun(ctx, run); !errors.Is(err, internalerr.ErrDuplicate) {
		t.Errorf("duplicate: got %v", err)
	}
	if _, err := st.GetRun(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}
}

func TestSQLiteUnencodableRun(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	run := sampleRun("nan", time.Now(), "fp")
	run.Thresholds = map[int]float64{2: math.NaN()}
	err := st.SaveRun(ctx, run)
	if err == nil || !strings.Contains(err.Error(), "encode thresholds") {
		t.Fatalf("NaN threshold: got %v", err)
	}

	run = sampleRun("inf", time.Now(), "fp")
	run.Trace[0].Delta = math.Inf(1)
	if err := st.SaveRun(ctx, run); err == nil {
		t.Fatal("infinite trace delta saved")
	}

	for _, id := range []string{"nan", "inf"} {
		if _, err := st.GetRun(ctx, id); !errors.Is(err, internalerr.ErrNotFound) {
			t.Errorf("%s: got %v", id, err)
		}
	}
}

func TestSQLiteEmptyResult(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	run := store.RunRecord{ID: "empty", StartedAt: time.Now(), Config: config.Default()}
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := st.GetRun(ctx, "empty")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Compounds) != 0 || len(got.Thresholds) != 0 {
		t.Errorf("expected empty run, got %+v", got)
	}
}

func TestSQLiteListAndFingerprint(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, fp := range []string{"fp1", "fp1", "fp2"} {
		id := string(rune('a' + i))
		if err := st.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Minute), fp)); err != nil {
			t.Fatalf("SaveRun(%s): %v", id, err)
		}
	}

	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != "c" || runs[2].ID != "a" {
		t.Fatalf("unexpected order: %d runs", len(runs))
	}

	runs, err = st.ListRuns(ctx, 1)
	if err != nil || len(runs) != 1 || runs[0].ID != "c" {
		t.Errorf("ListRuns(1) = %v, %v", runs, err)
	}

	got, ok, err := st.LatestByFingerprint(ctx, "fp1")
	if err != nil || !ok || got.ID != "b" {
		t.Errorf("LatestByFingerprint(fp1) = %s, %v, %v", got.ID, ok, err)
	}
	if _, ok, err := st.LatestByFingerprint(ctx, "nope"); ok || err != nil {
		t.Errorf("LatestByFingerprint(nope) = %v, %v", ok, err)
	}
}

// TestSQLiteReopen checks that history survives reopening and that the
// schema setup is idempotent.
func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.SaveRun(ctx, sampleRun("persisted", time.Now(), "fp")); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	if _, err := st.GetRun(ctx, "persisted"); err != nil {
		t.Errorf("GetRun after reopen: %v", err)
	}
}

func TestSQLiteConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	ids := store.NewIDSource()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- st.SaveRun(ctx, sampleRun(ids.New(time.Now()), time.Now(), "fp"))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent SaveRun: %v", err)
		}
	}

	runs, err := st.ListRuns(ctx, 0)
	if err != nil || len(runs) != 8 {
		t.Errorf("ListRuns = %d runs, %v", len(runs), err)
	}
}

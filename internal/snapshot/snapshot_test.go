package snapshot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/logger"
)

var saoPaulo = time.FixedZone("BRT", -3*3600)

func TestBuild_SortsByVolumeDesc(t *testing.T) {
	in := []models.SecurityRecord{
		{Ticker: "A"},
		{Ticker: "B", Volume: models.Int(50)},
		{Ticker: "C", Volume: models.Int(100)},
		{Ticker: "D", Volume: models.Int(50)},
	}
	snap := Build(in, nil, time.Date(2026, 2, 21, 0, 6, 0, 0, time.UTC), saoPaulo)

	var got []models.Ticker
	for _, r := range snap.Records {
		got = append(got, r.Ticker)
	}
	want := []models.Ticker{"C", "B", "D", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order=%v want %v", got, want)
		}
	}
	if in[0].Ticker != "A" {
		t.Fatalf("input slice must not be reordered")
	}
	if snap.TotalCount != 4 {
		t.Fatalf("totalCount=%d", snap.TotalCount)
	}
}

func TestBuild_SourceAndDates(t *testing.T) {
	now := time.Date(2026, 2, 21, 0, 6, 0, 0, time.UTC) // 20/02 21:06 in BRT

	tests := []struct {
		name       string
		ds         *models.ReferenceDataset
		wantSource string
		wantDate   string
	}{
		{"no reference", nil, SourceProviderOnly, "2026-02-20"},
		{"reference with date", &models.ReferenceDataset{ReferenceDate: "2026-02-19"}, SourceWithReference, "2026-02-19"},
		{"reference without date", &models.ReferenceDataset{}, SourceWithReference, "2026-02-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Build(nil, tt.ds, now, saoPaulo)
			if snap.Source != tt.wantSource {
				t.Fatalf("source=%q want %q", snap.Source, tt.wantSource)
			}
			if snap.ReferenceDate != tt.wantDate {
				t.Fatalf("referenceDate=%q want %q", snap.ReferenceDate, tt.wantDate)
			}
			if snap.GeneratedAt != "20/02/2026 21:06" {
				t.Fatalf("generatedAt=%q", snap.GeneratedAt)
			}
		})
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "stocks.json")
	snap := Build([]models.SecurityRecord{
		{Ticker: "HBOR3", Name: "Helbor & Cia", Price: 3.29, Sector: "Construção e Imobiliário", Volume: models.Int(10)},
	}, nil, time.Now(), saoPaulo)

	if err := Write(path, snap); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	s := string(raw)
	if !strings.Contains(s, "Helbor & Cia") || !strings.Contains(s, "Construção") {
		t.Fatalf("expected unescaped UTF-8 output, got %s", s)
	}
	if !strings.Contains(s, "\n  \"generatedAt\"") {
		t.Fatalf("expected 2-space indentation, got %s", s)
	}
	if strings.Contains(s, "dividendYield") {
		t.Fatalf("absent fields must be omitted, got %s", s)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(got.Records) != 1 || got.Records[0].Ticker != "HBOR3" {
		t.Fatalf("unexpected records: %+v", got.Records)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWrite_EmptySnapshotHasEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.json")
	if err := Write(path, Build(nil, nil, time.Now(), saoPaulo)); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"records": []`) {
		t.Fatalf("expected empty records array, got %s", raw)
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestReadPrior(t *testing.T) {
	dir := t.TempDir()

	if got := ReadPrior(filepath.Join(dir, "missing.json")); got != nil {
		t.Fatalf("missing file must yield nil")
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte("{not json"), 0o644)
	if got := ReadPrior(bad); got != nil {
		t.Fatalf("malformed file must yield nil")
	}

	legacy := filepath.Join(dir, "legacy.json")
	_ = os.WriteFile(legacy, []byte(`{"geradoEm":"x","acoes":[{"ticker":"OIBR3","preco":1.2},{"ticker":"MGLU3"}]}`), 0o644)
	got := ReadPrior(legacy)
	if got == nil || len(got.Records) != 2 || got.Records[0].Ticker != "OIBR3" {
		t.Fatalf("legacy layout not decoded: %+v", got)
	}
}

func TestWrite_LogsComponent(t *testing.T) {
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("LOG_LEVEL", "info")
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	path := filepath.Join(t.TempDir(), "stocks.json")
	if err := Write(path, &models.Snapshot{Source: SourceProviderOnly}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"component":"snapshot"`) || !strings.Contains(out, "snapshot written") {
		t.Fatalf("write not logged: %s", out)
	}
}

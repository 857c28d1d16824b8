package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/logger"
)

const (
	// SourceWithReference labels snapshots reconciled against COTAHIST.
	SourceWithReference = "COTAHIST (rb3) + Yahoo Finance"

	// SourceProviderOnly labels snapshots built without reference data.
	SourceProviderOnly = "Yahoo Finance (COTAHIST unavailable)"

	// TimestampLayout is the user-facing run clock format (DD/MM/YYYY HH:MM).
	TimestampLayout = "02/01/2006 15:04"

	dateLayout = "2006-01-02"
)

// FormatTimestamp renders the run clock in loc.
func FormatTimestamp(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(TimestampLayout)
}

// Build assembles the snapshot document. Records are sorted by volume
// descending (absent volume counts as zero) with ties kept in input order.
// The input slice is not modified.
func Build(records []models.SecurityRecord, ds *models.ReferenceDataset, now time.Time, loc *time.Location) *models.Snapshot {
	sorted := make([]models.SecurityRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VolumeOrZero() > sorted[j].VolumeOrZero()
	})

	if loc == nil {
		loc = time.Local
	}
	snap := &models.Snapshot{
		GeneratedAt:   FormatTimestamp(now, loc),
		ReferenceDate: now.In(loc).Format(dateLayout),
		Source:        SourceProviderOnly,
		TotalCount:    len(sorted),
		Records:       sorted,
	}
	if ds != nil {
		snap.Source = SourceWithReference
		if ds.ReferenceDate != "" {
			snap.ReferenceDate = ds.ReferenceDate
		}
	}
	return snap
}

// Encode renders snap as indented UTF-8 JSON without HTML escaping.
func Encode(snap *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Write atomically replaces path with snap. The document is written to a
// temp file in the same directory, synced, then renamed over path, so
// readers see either the previous or the new snapshot, never a partial one.
func Write(path string, snap *models.Snapshot) error {
	if snap.Records == nil {
		snap.Records = []models.SecurityRecord{}
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	committed = true

	log := logger.Component("snapshot")
	log.Info().
		Str("path", path).
		Int("records", snap.TotalCount).
		Str("source", snap.Source).
		Msg("snapshot written")
	return nil
}

// Read loads the snapshot at path. A missing file is reported with an error
// satisfying errors.Is(err, os.ErrNotExist).
func Read(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// ReadPrior loads the previous snapshot for universe resolution. Any failure
// degrades to nil and is logged.
func ReadPrior(path string) *models.Snapshot {
	log := logger.Component("snapshot")
	snap, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("no prior snapshot")
		} else {
			log.Warn().Str("path", path).Err(err).Msg("prior snapshot unreadable")
		}
		return nil
	}
	return snap
}

// document accepts both the current layout and the legacy one whose records
// lived under "acoes".
type document struct {
	models.Snapshot
	Acoes []models.SecurityRecord `json:"acoes"`
}

func decode(data []byte) (*models.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap := doc.Snapshot
	if snap.Records == nil && doc.Acoes != nil {
		snap.Records = doc.Acoes
	}
	if snap.TotalCount == 0 {
		snap.TotalCount = len(snap.Records)
	}
	return &snap, nil
}

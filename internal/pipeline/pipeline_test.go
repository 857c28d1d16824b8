package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/snapshot"
)

type staticReference struct{ ds *models.ReferenceDataset }

func (s staticReference) Load(context.Context) *models.ReferenceDataset { return s.ds }

type mapProvider struct {
	prices map[models.Ticker]float64
	fail   map[models.Ticker]bool
}

func (m mapProvider) Quote(_ context.Context, t models.Ticker) (*models.Quote, error) {
	if m.fail[t] {
		return nil, errors.New("timeout")
	}
	p, ok := m.prices[t]
	if !ok {
		return &models.Quote{}, nil
	}
	return &models.Quote{CurrentPrice: models.Float(p), Volume: models.Int(int64(p * 1000))}, nil
}

func (m mapProvider) Closes(context.Context, models.Ticker, models.HistoryPeriod) ([]float64, error) {
	return []float64{1, 2}, nil
}

type recorderSpy struct {
	calls int
	err   error
	id    uuid.UUID
}

func (r *recorderSpy) SaveRun(_ context.Context, id uuid.UUID, _ time.Time, _ *models.Snapshot) error {
	r.calls++
	r.id = id
	return r.err
}

func writeSeed(t *testing.T, dir string, tickers ...string) string {
	t.Helper()
	if tickers == nil {
		tickers = []string{}
	}
	b, err := json.Marshal(map[string][]string{"tickers": tickers})
	require.NoError(t, err)
	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

var fixedClock = func() time.Time { return time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC) }

func TestRun_EndToEndWithReference(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "public", "stocks.json")
	ref := &models.ReferenceDataset{
		ReferenceDate: "2026-10-15",
		Rows: map[models.Ticker]models.ReferenceRow{
			"PETR4": {Price: models.Float(5.2), Volume: models.Int(1_000_000)},
			"OIBR3": {Price: models.Float(0.9)},
		},
	}
	prov := mapProvider{prices: map[models.Ticker]float64{"PETR4": 5.0, "OIBR3": 1.0, "MGLU3": 8.0, "VALE3": 60}}
	rec := &recorderSpy{}

	p := New(
		Config{OutputPath: out, SeedFile: writeSeed(t, dir, "mglu3", "VALE3"), Location: time.UTC},
		staticReference{ref}, prov,
		WithRecorder(rec), WithClock(fixedClock),
	)
	res, err := p.Run(context.Background(), Params{MaxPrice: 10, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Stats.Total)
	assert.Equal(t, 3, res.Stats.Accepted)
	assert.Equal(t, 1, res.Stats.Filtered)
	assert.Equal(t, 2, res.Reconciled)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, res.RunID, rec.id)

	written, err := snapshot.Read(out)
	require.NoError(t, err)
	assert.Equal(t, snapshot.SourceWithReference, written.Source)
	assert.Equal(t, "2026-10-15", written.ReferenceDate)
	assert.Equal(t, "16/10/2026 14:30", written.GeneratedAt)
	require.Len(t, written.Records, 3)
	assert.Equal(t, models.Ticker("PETR4"), written.Records[0].Ticker)
	assert.Equal(t, 5.2, written.Records[0].Price)
	assert.Equal(t, models.Ticker("MGLU3"), written.Records[1].Ticker)
	assert.Equal(t, "16/10/2026 14:30", written.Records[1].LastUpdated)
}

func TestRun_PriorSnapshotFeedsUniverse(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "stocks.json")
	require.NoError(t, snapshot.Write(out, &models.Snapshot{Records: []models.SecurityRecord{{Ticker: "HBOR3"}}}))

	prov := mapProvider{prices: map[models.Ticker]float64{"HBOR3": 3.29}}
	p := New(Config{OutputPath: out, SeedFile: writeSeed(t, dir)}, staticReference{}, prov, WithClock(fixedClock))

	res, err := p.Run(context.Background(), Params{MaxPrice: 10, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, snapshot.SourceProviderOnly, res.Snapshot.Source)
	require.Len(t, res.Snapshot.Records, 1)
	assert.Equal(t, models.Ticker("HBOR3"), res.Snapshot.Records[0].Ticker)
}

func TestRun_EmptyResultKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "stocks.json")
	require.NoError(t, os.WriteFile(out, []byte(`{"records":[{"ticker":"AAAA3"}]}`), 0o644))
	before, _ := os.ReadFile(out)

	prov := mapProvider{fail: map[models.Ticker]bool{"AAAA3": true, "BBBB3": true}}
	rec := &recorderSpy{}
	p := New(Config{OutputPath: out, SeedFile: writeSeed(t, dir, "BBBB3")}, nil, prov, WithRecorder(rec))

	_, err := p.Run(context.Background(), Params{MaxPrice: 10, Workers: 2})
	require.ErrorIs(t, err, ErrEmptyResult)

	after, _ := os.ReadFile(out)
	assert.Equal(t, string(before), string(after))
	assert.Zero(t, rec.calls)
}

func TestRun_EmptyUniverseWritesEmptySnapshot(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "stocks.json")
	p := New(Config{OutputPath: out, SeedFile: writeSeed(t, dir)}, nil, mapProvider{})

	res, err := p.Run(context.Background(), Params{MaxPrice: 10, Workers: 1})
	require.NoError(t, err)
	assert.Zero(t, res.Snapshot.TotalCount)

	written, err := snapshot.Read(out)
	require.NoError(t, err)
	assert.Empty(t, written.Records)
}

func TestRun_RecorderFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	prov := mapProvider{prices: map[models.Ticker]float64{"PETR4": 5}}
	rec := &recorderSpy{err: errors.New("db down")}
	p := New(Config{OutputPath: filepath.Join(dir, "s.json"), SeedFile: writeSeed(t, dir, "PETR4")}, nil, prov, WithRecorder(rec))

	_, err := p.Run(context.Background(), Params{MaxPrice: 10, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.calls)
}

func TestRun_InvalidParams(t *testing.T) {
	p := New(Config{OutputPath: filepath.Join(t.TempDir(), "s.json")}, nil, mapProvider{})
	for _, params := range []Params{{MaxPrice: 0, Workers: 1}, {MaxPrice: -1, Workers: 1}, {MaxPrice: 10, Workers: 0}} {
		_, err := p.Run(context.Background(), params)
		assert.ErrorIs(t, err, ErrInvalidParams, "params %+v", params)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/snapshot"
	"github.com/guttosm/b3penny/internal/storage"
)

var (
	// ErrSnapshotNotFound means no snapshot has been written yet.
	ErrSnapshotNotFound = errors.New("snapshot not available")

	// ErrTickerNotFound means the current snapshot has no record for a ticker.
	ErrTickerNotFound = errors.New("ticker not found in snapshot")

	// ErrHistoryDisabled means no run history store is configured.
	ErrHistoryDisabled = errors.New("history store disabled")
)

// SnapshotService serves the written snapshot and its persisted history.
type SnapshotService interface {
	Current(ctx context.Context) (*models.Snapshot, error)
	GetRecord(ctx context.Context, ticker models.Ticker) (*models.SecurityRecord, error)
	GetHistory(ctx context.Context, ticker models.Ticker, startDate *time.Time, endDate *time.Time) ([]models.HistoryPoint, error)
	ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error)
}

type snapshotService struct {
	path string
	repo storage.SnapshotRepository
}

// NewSnapshotService reads the snapshot at path. repo may be nil when the
// history store is disabled.
func NewSnapshotService(path string, repo storage.SnapshotRepository) SnapshotService {
	return &snapshotService{path: path, repo: repo}
}

func (s *snapshotService) Current(_ context.Context) (*models.Snapshot, error) {
	snap, err := snapshot.Read(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, nil
}

func (s *snapshotService) GetRecord(ctx context.Context, ticker models.Ticker) (*models.SecurityRecord, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := snap.Find(ticker)
	if !ok {
		return nil, ErrTickerNotFound
	}
	return &rec, nil
}

func (s *snapshotService) GetHistory(ctx context.Context, ticker models.Ticker, startDate *time.Time, endDate *time.Time) ([]models.HistoryPoint, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}
	return s.repo.GetTickerHistory(ctx, string(ticker), startDate, endDate)
}

func (s *snapshotService) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}
	return s.repo.ListRuns(ctx, limit)
}

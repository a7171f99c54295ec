package services

import (
	"context"
	"errors"

	"github.com/plantguardian/plantguard-backend/internal/models"
)

// ErrNoStore reports that no analysis store is configured. Callers treat
// it as the signal to serve fallback data without logging a failure.
var ErrNoStore = errors.New("analysis store not configured")

// AnalysisStore is the persistence capability the aggregator depends on.
// Implementations must order RecentAnalyses newest first.
type AnalysisStore interface {
	InsertAnalysis(ctx context.Context, rec models.AnalysisRecord) error
	RecentAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
	ArchiveImage(ctx context.Context, recordID, imageBase64 string) error
	Collections(ctx context.Context) ([]string, error)
	Available() bool
}

// NoopStore stands in when persistence is not configured. Every operation
// reports ErrNoStore.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (*NoopStore) InsertAnalysis(ctx context.Context, rec models.AnalysisRecord) error {
	return ErrNoStore
}

func (*NoopStore) RecentAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	return nil, ErrNoStore
}

func (*NoopStore) ArchiveImage(ctx context.Context, recordID, imageBase64 string) error {
	return ErrNoStore
}

func (*NoopStore) Collections(ctx context.Context) ([]string, error) {
	return nil, ErrNoStore
}

func (*NoopStore) Available() bool { return false }

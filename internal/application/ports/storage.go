package ports

import (
	"context"

	"github.com/omniscience-ai/omniscience/internal/application/session"
)

// SessionSummary is the listing view of a persisted session.
type SessionSummary struct {
	ID        string
	Name      string
	FileCount int
	SavedAt   string
}

// SessionStoragePort abstracts session persistence.
type SessionStoragePort interface {
	Save(ctx context.Context, snap session.Snapshot) error
	Get(ctx context.Context, id string) (*session.Snapshot, error)
	GetByName(ctx context.Context, name string) (*session.Snapshot, error)
	List(ctx context.Context) ([]SessionSummary, error)
	Delete(ctx context.Context, id string) error
}

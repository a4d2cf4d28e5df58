package credstore

import (
	"context"

	"github.com/csvdesk/csvdesk/internal/client/models"
)

// NoopStore is the storage-unavailable fallback. Every operation succeeds
// without doing anything and Load always reports an absent pair.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (NoopStore) Save(ctx context.Context, pair models.TokenPair) error { return nil }

func (NoopStore) Load(ctx context.Context) (*models.TokenPair, error) { return nil, nil }

func (NoopStore) Clear(ctx context.Context) error { return nil }

package repository

import "context"

// Loader reads the persisted Baseline.
type Loader interface {
	Load(ctx context.Context) (Baseline, error)
}

// Saver persists a Baseline, replacing whatever was stored before.
type Saver interface {
	Save(ctx context.Context, b Baseline) error
}

// Repository abstracts persistence of the baseline file.
// JSONRepository implements this interface.
type Repository interface {
	Loader
	Saver
}

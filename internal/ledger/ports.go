package ledger

import "context"

// Persistence stores the serialized transaction collection as one blob.
// Load returns core.ErrBlobNotFound when nothing was saved yet.
type Persistence interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// PersistenceFuncs adapts a pair of functions to Persistence.
type PersistenceFuncs struct {
	LoadFunc func(ctx context.Context) ([]byte, error)
	SaveFunc func(ctx context.Context, data []byte) error
}

func (p PersistenceFuncs) Load(ctx context.Context) ([]byte, error) { return p.LoadFunc(ctx) }

func (p PersistenceFuncs) Save(ctx context.Context, data []byte) error { return p.SaveFunc(ctx, data) }

package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection names one persisted record sequence.
type Collection string

const (
	Accounts     Collection = "accounts"
	Products     Collection = "products"
	Transactions Collection = "transactions"
	// Credentials holds session-layer secrets and never reaches the ledger.
	Credentials Collection = "credentials"
)

// All lists every collection a backend may hold.
var All = []Collection{Accounts, Products, Transactions, Credentials}

// Reader returns the full JSON array snapshot of a collection. A collection
// that has never been written yields a nil payload.
type Reader interface {
	List(ctx context.Context, c Collection) ([]byte, error)
}

// Writer overwrites the full snapshot of a collection.
type Writer interface {
	Put(ctx context.Context, c Collection, payload []byte) error
}

// Tx is the view of the store inside an Update.
type Tx interface {
	Reader
	Writer
}

// Store is the sole gateway to persisted collections. Update runs fn as one
// atomic read-modify-write across collections: either every Put made by fn
// becomes visible or none does, and concurrent Updates are serialised.
type Store interface {
	Tx
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Load decodes the records of c. A missing collection decodes to an empty slice.
func Load[T any](ctx context.Context, r Reader, c Collection) ([]T, error) {
	payload, err := r.List(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	records := []T{}
	if len(payload) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c, err)
	}
	return records, nil
}

// Save encodes records and overwrites c with them.
func Save[T any](ctx context.Context, w Writer, c Collection, records []T) error {
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	if err := w.Put(ctx, c, payload); err != nil {
		return fmt.Errorf("put %s: %w", c, err)
	}
	return nil
}

func validCollection(c Collection) error {
	for _, known := range All {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("unknown collection %q", c)
}

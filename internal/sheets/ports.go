package sheets

import (
	"context"

	"pocket/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionMirror keeps an external copy of the ledger, one row per transaction.
	TransactionMirror interface {
		// Upsert writes t, replacing the row with the same id when present.
		Upsert(ctx context.Context, t core.Transaction) error
		// Remove deletes the row for id. Missing rows are not an error.
		Remove(ctx context.Context, id string) error
	}

	// MirrorReplacer rewrites the whole mirror from a snapshot.
	MirrorReplacer interface {
		ReplaceAll(ctx context.Context, txs []core.Transaction) error
	}

	// Mirror is implemented by adapters that support both incremental and full sync.
	Mirror interface {
		TransactionMirror
		MirrorReplacer
	}
)

// Header is the first row of a mirror sheet.
var Header = []string{"ID", "Date", "Description", "Category", "Type", "Amount"}

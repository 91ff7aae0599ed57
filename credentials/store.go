package credentials

import "context"

// Store persists the credential pair and identity snapshot across process
// restarts.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Save applies only the non-nil fields of the update (partial write).
// - Read returns zero values for missing or corrupt fields; errors are
//   reserved for backend unavailability.
// - Clear removes every field; no partial-clear state is observable by a
//   subsequent Read.
// - No side effects beyond the persistence medium, and no network access
//   other than the backend itself.
type Store interface {
	Save(ctx context.Context, update Update) error
	Read(ctx context.Context) (Snapshot, error)
	Clear(ctx context.Context) error
}

package identity

import "context"

// RecordStore persists the restorable session record. Implementations decide
// how long a record survives: the in-process store dies with the process,
// the Redis store survives restarts for durable "remember me" sessions.
//
// Load returns sentinel.ErrNotFound (possibly wrapped) when no record is
// held.
type RecordStore interface {
	Save(ctx context.Context, rec SessionRecord) error
	Load(ctx context.Context) (SessionRecord, error)
	Delete(ctx context.Context) error
}

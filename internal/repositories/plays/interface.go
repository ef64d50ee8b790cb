package plays

import (
	"context"
)

// Repository defines the interface for listening-history persistence
type Repository interface {
	// AppendRecord stores a new play record
	AppendRecord(ctx context.Context, input *AppendRecordInput) error

	// UpdateRecord rewrites an existing play record
	UpdateRecord(ctx context.Context, input *UpdateRecordInput) error

	// GetRecordsSince retrieves a guild's records started at or after a
	// point in time, oldest first; the zero time means all records
	GetRecordsSince(ctx context.Context, input *GetRecordsSinceInput) (*GetRecordsSinceOutput, error)
}

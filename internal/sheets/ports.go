package sheets

import (
	"context"

	"github.com/wdkapps/fillup/internal/core"
)

// RefuelAppender appends one refuel record to an external backup target and
// returns an opaque row reference.
type RefuelAppender interface {
	Append(ctx context.Context, vehicle core.Vehicle, rec *core.RefuelRecord) (rowRef string, err error)
}

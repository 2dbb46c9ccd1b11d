package stage

import (
	"context"

	"karaokeforge/internal/workset"
)

// Handler describes the contract the workflow manager needs from each
// pipeline stage. Prepare validates inputs and picks files; Execute performs
// the work and records outputs into the descriptor ledger.
type Handler interface {
	Prepare(context.Context, *workset.Descriptor) error
	Execute(context.Context, *workset.Descriptor) error
	HealthCheck(context.Context) Health
}

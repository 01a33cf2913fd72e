package sandbox

import (
	"context"

	"github.com/agentviz/agentviz/pkg/api"
)

// Executor runs one piece of generated code against an optional dataset
// and reports the recovered figure, captured output, and error text.
// Execution failures are reported inside the ExecutionResult; the error
// return is reserved for infrastructure problems (no interpreter, no
// scratch space, unreachable remote sandbox).
type Executor interface {
	Execute(ctx context.Context, code, dataPath string) (api.ExecutionResult, error)
}

package repair

import (
	"context"
	"log/slog"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/observability"
	"github.com/agentviz/agentviz/pkg/sandbox"
)

func adoptedLabel(adopted bool) string {
	if adopted {
		return "true"
	}
	return "false"
}

// Driver runs generated code through the sandbox, retrying with the
// textual fixes when the first attempt fails. A repaired result only
// replaces an earlier one when it is strictly better, so the chain can
// never regress below direct execution.
type Driver struct {
	executor sandbox.Executor
	logger   *slog.Logger
}

func NewDriver(executor sandbox.Executor, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{executor: executor, logger: logger}
}

// Better reports whether candidate is a strictly better outcome than
// current: it succeeded where current failed, or both failed and the
// candidate's error is shorter.
func Better(candidate, current api.ExecutionResult) bool {
	if !candidate.Failed() {
		return current.Failed()
	}
	return current.Failed() && len(candidate.Error) < len(current.Error)
}

// Execute runs code against dataPath, layering the repair attempts on
// top of direct execution. Infrastructure errors from the sandbox
// propagate immediately; code-level failures are what the chain works
// on. The returned result may still carry an error when no layer
// recovered; callers decide the terminal fallback.
func (d *Driver) Execute(ctx context.Context, code, dataPath string) (api.ExecutionResult, error) {
	best, err := d.executor.Execute(ctx, code, dataPath)
	if err != nil {
		return best, err
	}
	if !best.Failed() {
		return best, nil
	}

	if fixed, changed := PreFix(code); changed {
		candidate, err := d.executor.Execute(ctx, fixed, dataPath)
		if err != nil {
			return best, err
		}
		adopted := Better(candidate, best)
		observability.RepairsTotal.WithLabelValues("prefix", adoptedLabel(adopted)).Inc()
		if adopted {
			d.logger.Debug("repair adopted pre-fix result")
			best = candidate
		}
	}

	if best.Failed() && IsFormatSpecifierError(best.Error) {
		if fixed, changed := AggressiveFix(code, best.Error); changed {
			candidate, err := d.executor.Execute(ctx, fixed, dataPath)
			if err != nil {
				return best, err
			}
			adopted := Better(candidate, best)
			observability.RepairsTotal.WithLabelValues("aggressive", adoptedLabel(adopted)).Inc()
			if adopted {
				d.logger.Debug("repair adopted aggressive-fix result")
				best = candidate
			}
		}
	}

	return best, nil
}

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chazu/aerogeom/pkg/document"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	doc    *document.Document
	errors []EvalError
	err    error
}

// waitWithTimeout returns the first of: the result on ch, the end of ctx,
// or the timeout. ch must be buffered so that an abandoned evaluation can
// still deliver and exit.
func waitWithTimeout(ctx context.Context, ch <-chan evalResult, timeout time.Duration) (*document.Document, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.doc, res.errors, res.err
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("evaluation abandoned: %w", ctx.Err())
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}

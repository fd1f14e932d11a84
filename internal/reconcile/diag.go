package reconcile

import (
	"fmt"
	"log/slog"
)

// DiagCode categorizes recoverable structural diagnostics.
type DiagCode string

const (
	// DiagDuplicateKey indicates two siblings in one keyed list share a
	// key. The list is diffed positionally instead.
	DiagDuplicateKey DiagCode = "DUPLICATE_KEY"

	// DiagMissingKey indicates a keyed list contains an item with an
	// empty key. The list is diffed positionally instead.
	DiagMissingKey DiagCode = "MISSING_KEY"

	// DiagDuplicateAttr indicates an element declared the same
	// attribute key twice; the first occurrence wins.
	DiagDuplicateAttr DiagCode = "DUPLICATE_ATTR"

	// DiagOrphanSuspension indicates a component suspended with no
	// enclosing suspense boundary; the suspension is discarded.
	DiagOrphanSuspension DiagCode = "ORPHAN_SUSPENSION"

	// DiagRenderFailed indicates component render logic failed; the
	// component keeps (or mounts) an empty placeholder.
	DiagRenderFailed DiagCode = "RENDER_FAILED"

	// DiagSuspenseLoop indicates suspensions kept cascading while
	// settling boundary flips and the reconciler gave up.
	DiagSuspenseLoop DiagCode = "SUSPENSE_LOOP"
)

// Diag is one recoverable diagnostic. Diagnostics never cross the scope
// boundary as errors; they are logged and retained for inspection.
type Diag struct {
	Code    DiagCode
	Message string
}

func (d Diag) String() string {
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

func (r *Reconciler) diag(code DiagCode, format string, args ...any) {
	d := Diag{Code: code, Message: fmt.Sprintf(format, args...)}
	r.diags = append(r.diags, d)
	slog.Warn("reconcile diagnostic", "code", string(code), "detail", d.Message)
}

// Diags returns the diagnostics recorded so far.
func (r *Reconciler) Diags() []Diag { return r.diags }

// ClearDiags discards recorded diagnostics. Useful between test phases.
func (r *Reconciler) ClearDiags() { r.diags = nil }

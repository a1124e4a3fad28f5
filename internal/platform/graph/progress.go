package graph

// Progress steps reported by bulk operations.
const (
	StepInit   = "INIT"
	StepDelete = "DELETE"
)

// ProgressReport is a snapshot of a bulk operation's progress.
type ProgressReport struct {
	Step    string
	Current int
	Total   int
}

// ProgressReporter receives progress snapshots from bulk operations. The
// CLI wires a progress bar here; a nil reporter disables reporting.
type ProgressReporter interface {
	Report(ProgressReport)
}

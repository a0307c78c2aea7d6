package workflows

// cleanupFunc performs the actual compensation for an owed working copy.
type cleanupFunc func(wc WorkingCopy) (CleanupReport, error)

// cleanupGuard tracks the compensation owed for a run's working copy. Arming
// it records the obligation; release discharges it exactly once. Releasing an
// unarmed guard is a successful no-op, and a second release returns the
// report of the first instead of cleaning again.
type cleanupGuard struct {
	owed     *WorkingCopy
	released bool
	report   CleanupReport
}

// arm records the working copy whose removal is owed. Only the first call
// takes effect; a run owns at most one working copy.
func (g *cleanupGuard) arm(wc WorkingCopy) {
	if g.owed == nil {
		g.owed = &wc
	}
}

// release runs the compensation through fn and returns its report. Failures
// inside fn are absorbed into a success=false report, never propagated.
func (g *cleanupGuard) release(fn cleanupFunc) CleanupReport {
	if g.released {
		return g.report
	}
	g.released = true

	if g.owed == nil {
		g.report = CleanupReport{Success: true, Message: "no resource to clean"}
		return g.report
	}

	report, err := fn(*g.owed)
	if err != nil {
		report = CleanupReport{
			Path:    g.owed.Path,
			Success: false,
			Message: "cleanup failed: " + err.Error(),
		}
	}
	g.report = report
	return g.report
}

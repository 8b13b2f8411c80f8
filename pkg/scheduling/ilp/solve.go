package ilp

import (
	"fmt"
	"sort"
	"time"

	"github.com/nextmv-io/sdk/mip"

	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

// Options configures a Solve call.
type Options struct {
	// Timeout bounds how long the HiGHS solver may run per attempt.
	Timeout time.Duration
}

// DefaultTimeout matches the teacher's solver-call default in spirit: a
// short enough bound that an HTTP request handler can wait on it.
const DefaultTimeout = 10 * time.Second

// Result is what Solve returns: the resulting assignment plus whether the
// exact-staffing constraint had to be relaxed to reach a solution.
type Result struct {
	Assignments model.AssignmentMap
	Relaxed     bool
	Optimal     bool
}

// Solve builds and solves the ILP model for in. It first attempts an
// exact-staffing solve; if that attempt does not even reach a feasible
// (sub-optimal or optimal) solution, it retries once with the
// exact-staffing equalities relaxed to upper bounds, per spec.md §4.5.
// Both attempts share Options.Timeout.
//
// The returned bool reports whether a usable solution (exact or relaxed)
// was found at all. false with a nil error means both attempts proved
// infeasible — not a solver failure — and the caller should delegate to
// the greedy best-effort scheduler per spec.md §4.5 step 3. A non-nil
// error means the solver itself failed and must be surfaced as-is.
func Solve(in Input, opts Options) (Result, bool, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	res, ok, err := attempt(in, opts, true)
	if err != nil {
		return Result{}, false, err
	}
	if ok {
		res.Relaxed = false
		return res, true, nil
	}

	res, ok, err = attempt(in, opts, false)
	if err != nil {
		return Result{}, false, err
	}
	if !ok {
		return Result{}, false, nil
	}
	res.Relaxed = true
	return res, true, nil
}

// attempt runs one build+solve cycle and reports whether a usable
// (optimal or sub-optimal) solution was found.
func attempt(in Input, opts Options, exactStaffing bool) (Result, bool, error) {
	br := build(in, exactStaffing)

	solver, err := mip.NewSolver(mip.Highs, br.m)
	if err != nil {
		return Result{}, false, fmt.Errorf("ilp: creating solver: %w", err)
	}

	solveOptions := mip.NewSolveOptions()
	if err := solveOptions.SetMaximumDuration(opts.Timeout); err != nil {
		return Result{}, false, fmt.Errorf("ilp: setting solve timeout: %w", err)
	}

	solution, err := solver.Solve(solveOptions)
	if err != nil {
		return Result{}, false, fmt.Errorf("ilp: solving: %w", err)
	}

	if !solution.IsOptimal() && !solution.IsSubOptimal() {
		return Result{}, false, nil
	}

	assignments := make(model.AssignmentMap, len(br.occs))
	for _, o := range br.occs {
		assignments[o.ID] = nil
	}
	for key, xv := range br.v.x {
		if solution.Value(xv) >= 0.9 {
			assignments[key.occ] = append(assignments[key.occ], key.staff)
		}
	}
	// br.v.x is a map: iteration order is randomized. Sort each occurrence's
	// staff list so repeated solves of identical input produce byte-identical
	// output (spec.md §5, §9).
	for _, ids := range assignments {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	return Result{Assignments: assignments, Optimal: solution.IsOptimal()}, true, nil
}

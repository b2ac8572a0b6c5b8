package infra

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
	"github.com/fd1az/triarb-allocator/internal/apperror"
	"github.com/fd1az/triarb-allocator/internal/logger"
)

// SimplexSolver solves allocation models with gonum's dense simplex method.
type SimplexSolver struct {
	tol    float64
	logger logger.LoggerInterface
}

// NewSimplexSolver creates a SimplexSolver. tol is the pivot tolerance passed
// through to the solver; zero selects gonum's default.
func NewSimplexSolver(tol float64, log logger.LoggerInterface) *SimplexSolver {
	return &SimplexSolver{
		tol:    tol,
		logger: log,
	}
}

type simplexOutcome struct {
	objective float64
	values    []float64
	err       error
}

// Solve converts the model to standard form and runs the simplex method.
// Infeasible and unbounded outcomes are reported through the solution status,
// not as errors; an error means the solver itself failed or the context's
// budget ran out first.
func (s *SimplexSolver) Solve(ctx context.Context, m *domain.Model) (*domain.RawSolution, error) {
	n := m.NumVars()
	if n == 0 {
		return &domain.RawSolution{Status: domain.StatusOptimal, Values: []float64{}}, nil
	}
	if len(m.Rows) == 0 {
		return unconstrained(m, n), nil
	}

	c, a, b := standardForm(m)

	// Simplex has no cancellation hook, so it runs on its own goroutine and
	// the result is dropped if the context expires first.
	ch := make(chan simplexOutcome, 1)
	go func() {
		obj, x, err := lp.Simplex(c, a, b, s.tol, nil)
		ch <- simplexOutcome{objective: obj, values: x, err: err}
	}()

	select {
	case <-ctx.Done():
		return &domain.RawSolution{Status: domain.StatusSolverError},
			apperror.Internal(apperror.CodeSolverTimeout, "solver", ctx.Err())
	case out := <-ch:
		return s.interpret(ctx, m, n, out)
	}
}

func (s *SimplexSolver) interpret(ctx context.Context, m *domain.Model, n int, out simplexOutcome) (*domain.RawSolution, error) {
	switch {
	case out.err == nil:
		values := make([]float64, n)
		copy(values, out.values[:n])
		return &domain.RawSolution{
			Status: domain.StatusOptimal,
			Values: values,
			// The standard form minimizes the negated objective.
			Objective: -out.objective,
		}, nil
	case errors.Is(out.err, lp.ErrInfeasible):
		s.logger.Debug(ctx, "model infeasible", "rows", len(m.Rows), "vars", n)
		return &domain.RawSolution{Status: domain.StatusInfeasible}, nil
	case errors.Is(out.err, lp.ErrUnbounded):
		s.logger.Debug(ctx, "model unbounded", "rows", len(m.Rows), "vars", n)
		return &domain.RawSolution{Status: domain.StatusUnbounded}, nil
	default:
		return &domain.RawSolution{Status: domain.StatusSolverError},
			apperror.Internal(apperror.CodeSolverError, "solver", out.err)
	}
}

// unconstrained resolves a model with variables but no rows: any positive
// objective coefficient makes the maximization unbounded, otherwise the zero
// vector is optimal.
func unconstrained(m *domain.Model, n int) *domain.RawSolution {
	for _, v := range m.Objective {
		if v > 0 {
			return &domain.RawSolution{Status: domain.StatusUnbounded}
		}
	}
	return &domain.RawSolution{Status: domain.StatusOptimal, Values: make([]float64, n)}
}

// standardForm rewrites the model as minimize c'x subject to Ax = b, x >= 0.
// Every inequality row gets its own slack column, and rows with a negative
// right-hand side are negated so that b stays non-negative.
func standardForm(m *domain.Model) ([]float64, *mat.Dense, []float64) {
	n := m.NumVars()
	rows := len(m.Rows)
	cols := n + rows

	c := make([]float64, cols)
	for j, v := range m.Objective {
		c[j] = -v
	}

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)

	for i, row := range m.Rows {
		slack := 1.0
		if row.Sense == domain.SenseGE {
			slack = -1.0
		}

		sign := 1.0
		if row.RHS < 0 {
			sign = -1.0
		}

		for j, v := range row.Coeffs {
			a.Set(i, j, sign*v)
		}
		a.Set(i, n+i, sign*slack)
		b[i] = sign * row.RHS
	}

	return c, a, b
}

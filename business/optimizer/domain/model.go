package domain

// RowKind identifies the constraint family a row belongs to.
type RowKind string

// Constraint row families.
const (
	RowBalance      RowKind = "balance"
	RowLiquidity    RowKind = "liquidity"
	RowLegLiquidity RowKind = "leg_liquidity"
	RowMinHolding   RowKind = "min_holding"
	RowRisk         RowKind = "risk"
	RowPosition     RowKind = "position"
)

// Sense is the direction of a constraint row.
type Sense int

// Row senses.
const (
	SenseLE Sense = iota // coeffs . x <= rhs
	SenseGE              // coeffs . x >= rhs
)

// Row is one linear constraint over the decision variables.
type Row struct {
	Name   string
	Kind   RowKind
	Coeffs []float64 // one coefficient per variable, dense
	Sense  Sense
	RHS    float64
}

// Model is a linear program with one non-negative continuous variable per
// opportunity, maximizing the risk-weighted expected profit. It is a plain
// data contract between the builder and the solver adapter.
type Model struct {
	VarIDs    []string  // opportunity IDs, preserving input order
	Objective []float64 // maximize Objective . x
	Rows      []Row
}

// NumVars returns the number of decision variables.
func (m *Model) NumVars() int {
	return len(m.VarIDs)
}

// SolveStatus is the normalized outcome of a solver invocation.
type SolveStatus string

// Solver statuses.
const (
	StatusOptimal     SolveStatus = "Optimal"
	StatusInfeasible  SolveStatus = "Infeasible"
	StatusUnbounded   SolveStatus = "Unbounded"
	StatusSolverError SolveStatus = "SolverError"
)

// RawSolution is the solver adapter's normalized output: a status plus, when
// optimal, one value per model variable.
type RawSolution struct {
	Status    SolveStatus
	Values    []float64
	Objective float64
}

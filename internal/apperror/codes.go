package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Optimizer-specific error codes
const (
	// Opportunity validation errors
	CodeDegenerateCycle   Code = "DEGENERATE_CYCLE"
	CodeInvalidRate       Code = "INVALID_RATE"
	CodeInvalidFee        Code = "INVALID_FEE"
	CodeInvalidConfidence Code = "INVALID_CONFIDENCE"
	CodeInvalidLiquidity  Code = "INVALID_LIQUIDITY"

	// Portfolio validation errors
	CodeNegativeBalance      Code = "NEGATIVE_BALANCE"
	CodeInvalidRiskTolerance Code = "INVALID_RISK_TOLERANCE"
	CodeInvalidPortfolio     Code = "INVALID_PORTFOLIO"

	// Market condition errors
	CodeInvalidMarketFactor Code = "INVALID_MARKET_FACTOR"

	// Solver errors
	CodeSolverError   Code = "SOLVER_ERROR"
	CodeSolverTimeout Code = "SOLVER_TIMEOUT"

	// Solution extraction errors
	CodeSolutionOutOfBounds Code = "SOLUTION_OUT_OF_BOUNDS"
	CodePlanInconsistent    Code = "PLAN_INCONSISTENT"
	CodeResultNotOptimal    Code = "RESULT_NOT_OPTIMAL"
)

package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Opportunity validation errors
	CodeDegenerateCycle:   "Opportunity cycle repeats a currency",
	CodeInvalidRate:       "Exchange rate must be positive",
	CodeInvalidFee:        "Transaction fee must be in [0,1)",
	CodeInvalidConfidence: "Confidence score must be in [0,1]",
	CodeInvalidLiquidity:  "Liquidity cap must be non-negative",

	// Portfolio validation errors
	CodeNegativeBalance:      "Portfolio balance is negative",
	CodeInvalidRiskTolerance: "Risk tolerance must be in (0,1]",
	CodeInvalidPortfolio:     "Portfolio state is invalid",

	// Market condition errors
	CodeInvalidMarketFactor: "Market factor out of range",

	// Solver errors
	CodeSolverError:   "Linear program solve failed",
	CodeSolverTimeout: "Linear program solve exceeded time budget",

	// Solution extraction errors
	CodeSolutionOutOfBounds: "Solver value outside declared bounds",
	CodePlanInconsistent:    "Execution plan does not reproduce declared profit",
	CodeResultNotOptimal:    "Result fields read for a non-optimal status",
}

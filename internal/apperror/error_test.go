package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := errors.New("pivot failure")

	err := Wrap(cause, CodeSolverError, "simplex")

	if err.Code != CodeSolverError {
		t.Errorf("code = %s, want %s", err.Code, CodeSolverError)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if err.Context != "simplex" {
		t.Errorf("context = %q, want simplex", err.Context)
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := Wrap(nil, CodeSolverError, "simplex"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrap_KeepsExistingAppError(t *testing.T) {
	inner := Validation(CodeInvalidRate, "leg 1")
	outer := Wrap(fmt.Errorf("building model: %w", inner), CodeSolverError, "")

	if outer.Code != CodeInvalidRate {
		t.Errorf("code = %s, want the inner %s", outer.Code, CodeInvalidRate)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"direct app error", Validation(CodeInvalidFee, "leg 0"), CodeInvalidFee},
		{"wrapped app error", fmt.Errorf("outer: %w", Internal(CodeSolverTimeout, "solver", nil)), CodeSolverTimeout},
		{"plain error", errors.New("plain"), CodeUnknownError},
		{"nil", nil, CodeUnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsConfiguration(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"degenerate cycle", Validation(CodeDegenerateCycle, ""), true},
		{"invalid market factor", Validation(CodeInvalidMarketFactor, ""), true},
		{"invalid portfolio", Validation(CodeInvalidPortfolio, ""), true},
		{"solver timeout", Internal(CodeSolverTimeout, "solver", nil), false},
		{"solver error", Internal(CodeSolverError, "solver", nil), false},
		{"plain error", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfiguration(tt.err); got != tt.want {
				t.Errorf("IsConfiguration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorsIs_MatchesByCode(t *testing.T) {
	a := Validation(CodeInvalidRate, "leg 0")
	b := Validation(CodeInvalidRate, "leg 2")

	if !errors.Is(a, b) {
		t.Error("errors with the same code should match")
	}
	if errors.Is(a, Validation(CodeInvalidFee, "")) {
		t.Error("errors with different codes should not match")
	}
}

// Package di contains dependency injection tokens for the optimizer context.
package di

import (
	"github.com/fd1az/triarb-allocator/business/optimizer/app"
	"github.com/fd1az/triarb-allocator/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Driver = di.NewToken[*app.Driver]("optimizer.Driver")
)

// Private dependency tokens - internal to optimizer module
var (
	Solver    = di.NewToken[app.Solver]("optimizer:solver")
	Extractor = di.NewToken[*app.Extractor]("optimizer:extractor")
	Reporter  = di.NewToken[app.Reporter]("optimizer:reporter")
)

// Helper functions for type-safe access
func GetDriver(c di.ServiceRegistry) *app.Driver {
	return di.GetToken(c, Driver)
}

func GetSolver(c di.ServiceRegistry) app.Solver {
	return di.GetToken(c, Solver)
}

func GetExtractor(c di.ServiceRegistry) *app.Extractor {
	return di.GetToken(c, Extractor)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

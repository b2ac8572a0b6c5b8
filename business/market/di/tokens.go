// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/triarb-allocator/business/market/app"
	"github.com/fd1az/triarb-allocator/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Simulator = di.NewToken[*app.Simulator]("market.Simulator")
	Generator = di.NewToken[*app.Generator]("market.Generator")
)

// Helper functions for type-safe access
func GetSimulator(c di.ServiceRegistry) *app.Simulator {
	return di.GetToken(c, Simulator)
}

func GetGenerator(c di.ServiceRegistry) *app.Generator {
	return di.GetToken(c, Generator)
}

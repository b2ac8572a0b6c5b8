// Package di provides a minimal service registry keyed by string tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry provides read access to registered services.
type ServiceRegistry interface {
	Get(token string) any
}

// Container registers and resolves services.
type Container interface {
	ServiceRegistry
	Register(token string, service any)
}

type container struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewContainer creates an empty Container.
func NewContainer() Container {
	return &container{
		services: make(map[string]any),
	}
}

func (c *container) Register(token string, service any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[token] = service
}

func (c *container) Get(token string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	svc, ok := c.services[token]
	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", token))
	}
	return svc
}

// Token is a typed service key.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the token's registry key.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a lazy factory for a token. The factory runs on
// first resolution and the instance is cached.
func RegisterToken[T any](c Container, t Token[T], factory func(ServiceRegistry) T) {
	c.Register(t.name, factory)
}

// GetToken resolves a token, invoking and caching its factory if needed.
func GetToken[T any](sr ServiceRegistry, t Token[T]) T {
	switch v := sr.Get(t.name).(type) {
	case T:
		return v
	case func(ServiceRegistry) T:
		instance := v(sr)
		if c, ok := sr.(Container); ok {
			c.Register(t.name, instance)
		}
		return instance
	default:
		panic(fmt.Sprintf("di: service %q has unexpected type %T", t.name, v))
	}
}

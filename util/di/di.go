// Package di assembles the command's object graph on top of dig.
package di

import (
	"go.uber.org/dig"
)

type config struct {
	providers []provider
	invokes   []any
}

type provider struct {
	constructor any
	opts        []dig.ProvideOption
}

type Option interface {
	apply(*config)
}

type Container struct {
	dc *dig.Container
}

func New(opts ...Option) (*Container, error) {
	conf := config{}
	for _, opt := range opts {
		opt.apply(&conf)
	}

	dc := dig.New(dig.DeferAcyclicVerification())

	for _, p := range conf.providers {
		if err := dc.Provide(p.constructor, p.opts...); err != nil {
			return nil, err
		}
	}

	for _, fn := range conf.invokes {
		if err := dc.Invoke(fn); err != nil {
			return nil, err
		}
	}

	return &Container{dc: dc}, nil
}

// Get builds, or returns the already built, value of type T.
func Get[T any](c *Container) (T, error) {
	var out T
	err := c.dc.Invoke(func(v T) {
		out = v
	})
	return out, err
}

// Invoke calls fn with its arguments resolved from the container.
func (c *Container) Invoke(fn any) error {
	return c.dc.Invoke(fn)
}

type providerOpt struct {
	p provider
}

func (po providerOpt) apply(c *config) {
	c.providers = append(c.providers, po.p)
}

func Provider(constructor any, opts ...dig.ProvideOption) Option {
	return &providerOpt{
		p: provider{
			constructor: constructor,
			opts:        opts,
		},
	}
}

// Value provides an already built value.
func Value[T any](v T) Option {
	return Provider(func() T { return v })
}

type invokeOpt struct {
	fn any
}

func (o invokeOpt) apply(c *config) {
	c.invokes = append(c.invokes, o.fn)
}

// Eager runs fn while the container is built, so construction errors surface from New.
func Eager(fn any) Option {
	return invokeOpt{fn: fn}
}

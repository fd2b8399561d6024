// Package service runs the long-lived parts of a process as one unit.
package service

import (
	"context"
	"errors"
	"fmt"
)

// Service is started with Run, which must not block,
// and stopped with Shutdown.
type Service interface {
	Run()
	Shutdown(ctx context.Context) error
}

// Group starts services in the order they were added
// and stops them in the same order.
type Group struct {
	list []Service
}

func (g *Group) Add(s ...Service) { g.list = append(g.list, s...) }
func (g *Group) Len() int         { return len(g.list) }

func (g *Group) Start() {
	for _, s := range g.list {
		s.Run()
	}
}

// Shutdown stops every service, even after a failure, and joins the
// errors. A cancelled context is not an error of the service.
func (g *Group) Shutdown(ctx context.Context) error {
	var errs []error
	for _, s := range g.list {
		err := s.Shutdown(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		errs = append(errs, fmt.Errorf("stop %v: %w", s, err))
	}
	return errors.Join(errs...)
}

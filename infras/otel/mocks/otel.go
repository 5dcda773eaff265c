package mocks

import (
	"context"

	"consultation/infras/otel"
)

// noopOtel hands out scopes that record nothing.
type noopOtel struct{}

func (noopOtel) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, noopScope{}
}

func (noopOtel) Shutdown(context.Context) error {
	return nil
}

// NewOtel returns an otel.Otel for tests that do not inspect spans.
func NewOtel() otel.Otel {
	return noopOtel{}
}

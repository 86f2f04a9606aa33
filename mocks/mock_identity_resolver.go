package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockIdentityResolver is a mock implementation of identity.Resolver.
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) Resolve(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityResolver) ResolveAll(ctx context.Context, refs []string) ([]string, []string) {
	args := m.Called(ctx, refs)
	var principals, skipped []string
	if args.Get(0) != nil {
		principals = args.Get(0).([]string)
	}
	if args.Get(1) != nil {
		skipped = args.Get(1).([]string)
	}
	return principals, skipped
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mongoprov/internal/domain"
)

// MockDatabaseClient is a mock implementation of port.DatabaseClient.
type MockDatabaseClient struct {
	mock.Mock
}

func (m *MockDatabaseClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDatabaseClient) DatabaseExists(ctx context.Context, database string) (bool, error) {
	args := m.Called(ctx, database)
	return args.Bool(0), args.Error(1)
}

func (m *MockDatabaseClient) ListCollections(ctx context.Context, database string, names []string) ([]domain.CollectionInfo, error) {
	args := m.Called(ctx, database, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollectionInfo), args.Error(1)
}

func (m *MockDatabaseClient) CreateCollection(ctx context.Context, database, collection string, validator map[string]interface{}) error {
	args := m.Called(ctx, database, collection, validator)
	return args.Error(0)
}

func (m *MockDatabaseClient) UpdateValidator(ctx context.Context, database, collection string, validator map[string]interface{}) error {
	args := m.Called(ctx, database, collection, validator)
	return args.Error(0)
}

func (m *MockDatabaseClient) DropCollection(ctx context.Context, database, collection string) error {
	args := m.Called(ctx, database, collection)
	return args.Error(0)
}

func (m *MockDatabaseClient) RoleExists(ctx context.Context, database, role string) (bool, error) {
	args := m.Called(ctx, database, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockDatabaseClient) CreateRole(ctx context.Context, database, role string, privileges []domain.Privilege, inherited []domain.RoleRef) error {
	args := m.Called(ctx, database, role, privileges, inherited)
	return args.Error(0)
}

func (m *MockDatabaseClient) SetRolePrivileges(ctx context.Context, database, role string, privileges []domain.Privilege) error {
	args := m.Called(ctx, database, role, privileges)
	return args.Error(0)
}

func (m *MockDatabaseClient) GrantRole(ctx context.Context, principal string, role domain.RoleRef) error {
	args := m.Called(ctx, principal, role)
	return args.Error(0)
}

func (m *MockDatabaseClient) RevokeRole(ctx context.Context, principal string, role domain.RoleRef) error {
	args := m.Called(ctx, principal, role)
	return args.Error(0)
}

func (m *MockDatabaseClient) UsersWithRole(ctx context.Context, role domain.RoleRef) ([]string, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDatabaseClient) UserExists(ctx context.Context, principal string) (bool, error) {
	args := m.Called(ctx, principal)
	return args.Bool(0), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mongoprov/internal/domain"
)

// MockValidationService is a mock implementation of service.ValidationService.
type MockValidationService struct {
	mock.Mock
}

func (m *MockValidationService) Validate(ctx context.Context, rawDescriptor, componentID string) (*domain.ValidationResult, error) {
	args := m.Called(ctx, rawDescriptor, componentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationResult), args.Error(1)
}

// MockProvisionService is a mock implementation of service.ProvisionService.
type MockProvisionService struct {
	mock.Mock
}

func (m *MockProvisionService) Provision(ctx context.Context, rawDescriptor, componentID string) (*domain.ProvisioningStatus, error) {
	args := m.Called(ctx, rawDescriptor, componentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProvisioningStatus), args.Error(1)
}

func (m *MockProvisionService) Unprovision(ctx context.Context, rawDescriptor, componentID string, removeData bool) (*domain.ProvisioningStatus, error) {
	args := m.Called(ctx, rawDescriptor, componentID, removeData)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProvisioningStatus), args.Error(1)
}

// MockUpdateACLService is a mock implementation of service.UpdateACLService.
type MockUpdateACLService struct {
	mock.Mock
}

func (m *MockUpdateACLService) UpdateACL(ctx context.Context, rawDescriptor, componentID string, refs []string) (*domain.ProvisioningStatus, error) {
	args := m.Called(ctx, rawDescriptor, componentID, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProvisioningStatus), args.Error(1)
}

// MockReverseProvisionService is a mock implementation of service.ReverseProvisionService.
type MockReverseProvisionService struct {
	mock.Mock
}

func (m *MockReverseProvisionService) Import(ctx context.Context, database string, collections []string) (*domain.ReverseImportResult, error) {
	args := m.Called(ctx, database, collections)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReverseImportResult), args.Error(1)
}

func (m *MockReverseProvisionService) Updates(result *domain.ReverseImportResult, environment string) map[string]interface{} {
	args := m.Called(result, environment)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]interface{})
}

package service

import (
	"context"

	"mongoprov/internal/descriptor"
	"mongoprov/internal/domain"
)

// ValidationService checks a descriptor without touching the database.
type ValidationService interface {
	Validate(ctx context.Context, rawDescriptor, componentID string) (*domain.ValidationResult, error)
}

type validationService struct {
	parser *descriptor.Parser
}

// NewValidationService creates the ValidationService implementation.
func NewValidationService(parser *descriptor.Parser) ValidationService {
	return &validationService{parser: parser}
}

func (s *validationService) Validate(_ context.Context, rawDescriptor, componentID string) (*domain.ValidationResult, error) {
	if _, err := s.parser.Parse(rawDescriptor, componentID); err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return &domain.ValidationResult{Valid: false, Errors: ve.Messages()}, nil
		}
		return nil, err
	}
	return &domain.ValidationResult{Valid: true, Errors: []string{}}, nil
}

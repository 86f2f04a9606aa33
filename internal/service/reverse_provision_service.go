package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"mongoprov/internal/domain"
	"mongoprov/internal/port"
)

// ReverseProvisionService reads existing database metadata and reconstructs
// descriptor fragments from it.
type ReverseProvisionService interface {
	// Import reads the named collections of a database (all of them when
	// the list is empty) and returns their fragments in stable order.
	// The database must exist; explicitly named collections must too.
	Import(ctx context.Context, database string, collections []string) (*domain.ReverseImportResult, error)

	// Updates renders an import result into the descriptor update document
	// returned to the platform.
	Updates(result *domain.ReverseImportResult, environment string) map[string]interface{}
}

type reverseProvisionService struct {
	db port.DatabaseClient
}

// NewReverseProvisionService creates the ReverseProvisionService implementation.
func NewReverseProvisionService(db port.DatabaseClient) ReverseProvisionService {
	return &reverseProvisionService{db: db}
}

func (s *reverseProvisionService) Import(ctx context.Context, database string, collections []string) (*domain.ReverseImportResult, error) {
	if database == "" {
		return nil, domain.NewValidationError("params.database", "no database specified")
	}
	log.Printf("reverse provisioning database %s", database)

	exists, err := s.db.DatabaseExists(ctx, database)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("database %q: %w", database, domain.ErrNotFound)
	}

	infos, err := s.db.ListCollections(ctx, database, collections)
	if err != nil {
		return nil, err
	}

	if len(collections) > 0 {
		found := make(map[string]bool, len(infos))
		for _, info := range infos {
			found[info.Name] = true
		}
		var errs []domain.FieldError
		for _, name := range collections {
			if !found[name] {
				errs = append(errs, domain.FieldError{
					Field:  "params.collections",
					Reason: fmt.Sprintf("collection %q not found in database %q", name, database),
				})
			}
		}
		if len(errs) > 0 {
			return nil, &domain.ValidationError{Errors: errs}
		}
	}

	fragments := make([]domain.CollectionFragment, 0, len(infos))
	for _, info := range infos {
		fragments = append(fragments, domain.CollectionFragment{
			Collection: info.Name,
			Validator:  info.Validator,
		})
	}
	// Stable output: repeated imports of an unchanged database are
	// byte-identical.
	sort.Slice(fragments, func(i, j int) bool {
		return fragments[i].Collection < fragments[j].Collection
	})

	log.Printf("reverse provisioning of %s found %d collections", database, len(fragments))
	return &domain.ReverseImportResult{Database: database, Fragments: fragments}, nil
}

func (s *reverseProvisionService) Updates(result *domain.ReverseImportResult, environment string) map[string]interface{} {
	components := make([]map[string]interface{}, 0, len(result.Fragments))
	for _, fragment := range result.Fragments {
		component := map[string]interface{}{
			"description": fragment.Collection,
			"collection":  fragment.Collection,
		}
		if fragment.Validator != nil {
			// json.Marshal sorts map keys, keeping the rendition stable.
			if raw, err := json.Marshal(fragment.Validator); err == nil {
				component["jsonschema"] = string(raw)
			}
		}
		components = append(components, component)
	}
	return map[string]interface{}{
		"parameters": map[string]interface{}{
			"subcomponentDefinition": map[string]interface{}{
				"components": components,
			},
		},
		"environmentParameters": map[string]interface{}{
			environment: map[string]interface{}{
				"database": result.Database,
			},
		},
	}
}

package service

import (
	"context"
	"log"

	"mongoprov/internal/descriptor"
	"mongoprov/internal/domain"
	"mongoprov/internal/identity"
	"mongoprov/internal/naming"
	"mongoprov/internal/port"
)

// ProvisionService reconciles a component descriptor against the live
// database: databases, collections, validators, roles and bindings.
type ProvisionService interface {
	// Provision creates or converges the component's database, collections
	// and roles. Safe to repeat: a second identical call changes nothing.
	Provision(ctx context.Context, rawDescriptor, componentID string) (*domain.ProvisioningStatus, error)

	// Unprovision removes the component's collections (when removeData is
	// set) and consumer bindings. Repeating it when the resources are
	// already gone succeeds.
	Unprovision(ctx context.Context, rawDescriptor, componentID string, removeData bool) (*domain.ProvisioningStatus, error)
}

type provisionService struct {
	db       port.DatabaseClient
	parser   *descriptor.Parser
	resolver identity.Resolver
	acl      ACLManager
}

// NewProvisionService creates the ProvisionService implementation.
func NewProvisionService(db port.DatabaseClient, parser *descriptor.Parser, resolver identity.Resolver, acl ACLManager) ProvisionService {
	return &provisionService{db: db, parser: parser, resolver: resolver, acl: acl}
}

func (s *provisionService) Provision(ctx context.Context, rawDescriptor, componentID string) (*domain.ProvisioningStatus, error) {
	desc, err := s.parser.Parse(rawDescriptor, componentID)
	if err != nil {
		return nil, err
	}
	database := naming.DatabaseName(desc.Domain, desc.System, desc.SystemMajorVersion, desc.Environment)
	log.Printf("provisioning component %s into database %s", desc.ComponentID, database)

	// The owner must map to a principal; a missing owner aborts the whole
	// request. Developer group members follow the soft-skip policy instead.
	owner, err := s.resolver.Resolve(ctx, desc.Owner)
	if err != nil {
		return nil, err
	}
	developers, skipped := s.resolver.ResolveAll(ctx, desc.DeveloperGroup)
	principals := append([]string{owner}, developers...)

	// Document databases have no explicit create primitive: the database
	// materializes with its first collection. Pre-existence is fine.
	exists, err := s.db.DatabaseExists(ctx, database)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Printf("database %s already exists, no action taken", database)
	}

	for _, spec := range desc.Collections {
		if err := s.ensureCollection(ctx, database, spec); err != nil {
			return nil, err
		}
	}

	if err := s.acl.EnsureDeveloperRole(ctx, database, principals); err != nil {
		return nil, err
	}
	for _, spec := range desc.Collections {
		if err := s.acl.EnsureConsumerRole(ctx, database, spec.Name); err != nil {
			return nil, err
		}
	}

	log.Printf("successfully provisioned component %s", desc.ComponentID)
	return &domain.ProvisioningStatus{
		Status: domain.StateCompleted,
		Info:   provisionInfo(database, desc, skipped),
	}, nil
}

// ensureCollection creates the collection if absent, or re-applies the
// schema validator so validator drift from a previous partial run heals.
func (s *provisionService) ensureCollection(ctx context.Context, database string, spec domain.CollectionSpec) error {
	existing, err := s.db.ListCollections(ctx, database, []string{spec.Name})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		log.Printf("creating collection %s.%s", database, spec.Name)
		return s.db.CreateCollection(ctx, database, spec.Name, spec.Validator)
	}
	log.Printf("collection %s.%s already exists, re-applying validator", database, spec.Name)
	return s.db.UpdateValidator(ctx, database, spec.Name, spec.Validator)
}

func (s *provisionService) Unprovision(ctx context.Context, rawDescriptor, componentID string, removeData bool) (*domain.ProvisioningStatus, error) {
	desc, err := s.parser.Parse(rawDescriptor, componentID)
	if err != nil {
		return nil, err
	}
	database := naming.DatabaseName(desc.Domain, desc.System, desc.SystemMajorVersion, desc.Environment)
	log.Printf("unprovisioning component %s from database %s (removeData=%t)", desc.ComponentID, database, removeData)

	dbExists, err := s.db.DatabaseExists(ctx, database)
	if err != nil {
		return nil, err
	}

	for _, spec := range desc.Collections {
		if removeData || spec.RemoveData {
			if dbExists {
				if err := s.db.DropCollection(ctx, database, spec.Name); err != nil {
					return nil, err
				}
				log.Printf("dropped collection %s.%s", database, spec.Name)
			} else {
				log.Printf("database %s does not exist, nothing to drop for %s", database, spec.Name)
			}
			if _, err := s.acl.UnbindAllConsumers(ctx, database, spec.Name); err != nil {
				return nil, err
			}
			continue
		}
		// Data is preserved: the consumer role loses its privileges and
		// bindings but stays defined, so a re-provision can reuse it.
		if err := s.acl.StripConsumerPrivileges(ctx, database, spec.Name); err != nil {
			return nil, err
		}
	}

	log.Printf("successfully unprovisioned component %s", desc.ComponentID)
	return &domain.ProvisioningStatus{Status: domain.StateCompleted}, nil
}

func provisionInfo(database string, desc *domain.ComponentDescriptor, warnings []string) *domain.Info {
	collections := make([]string, 0, len(desc.Collections))
	for _, spec := range desc.Collections {
		collections = append(collections, spec.Name)
	}
	public := map[string]interface{}{
		"database": map[string]interface{}{
			"type":  "string",
			"label": "Database Name",
			"value": database,
		},
		"collections": map[string]interface{}{
			"type":  "string",
			"label": "Collections",
			"value": collections,
		},
	}
	if len(warnings) > 0 {
		public["warnings"] = warnings
	}
	return &domain.Info{PublicInfo: public, PrivateInfo: map[string]interface{}{}}
}

package service

import (
	"context"
	"log"

	"mongoprov/internal/descriptor"
	"mongoprov/internal/domain"
	"mongoprov/internal/identity"
	"mongoprov/internal/naming"
)

// UpdateACLService reconciles consumer role bindings to exactly the set of
// identities present in the request.
type UpdateACLService interface {
	UpdateACL(ctx context.Context, rawDescriptor, componentID string, refs []string) (*domain.ProvisioningStatus, error)
}

type updateACLService struct {
	parser   *descriptor.Parser
	resolver identity.Resolver
	acl      ACLManager
}

// NewUpdateACLService creates the UpdateACLService implementation.
func NewUpdateACLService(parser *descriptor.Parser, resolver identity.Resolver, acl ACLManager) UpdateACLService {
	return &updateACLService{parser: parser, resolver: resolver, acl: acl}
}

func (s *updateACLService) UpdateACL(ctx context.Context, rawDescriptor, componentID string, refs []string) (*domain.ProvisioningStatus, error) {
	desc, err := s.parser.Parse(rawDescriptor, componentID)
	if err != nil {
		return nil, err
	}
	database := naming.DatabaseName(desc.Domain, desc.System, desc.SystemMajorVersion, desc.Environment)
	log.Printf("updating ACLs on database %s for %d identities", database, len(refs))

	// Unresolvable identities are dropped with a warning: partial ACL
	// application beats blocking the request on one bad reference.
	principals, skipped := s.resolver.ResolveAll(ctx, refs)

	var granted, revoked, failures []string
	failures = append(failures, skipped...)

	for _, spec := range desc.Collections {
		if err := s.acl.EnsureConsumerRole(ctx, database, spec.Name); err != nil {
			return nil, err
		}
		sync, err := s.acl.SyncConsumerBindings(ctx, database, spec.Name, principals)
		if err != nil {
			return nil, err
		}
		granted = append(granted, sync.Granted...)
		revoked = append(revoked, sync.Revoked...)
		failures = append(failures, sync.Errors...)
	}

	if len(failures) > 0 {
		log.Printf("ACL update on %s finished with %d errors", database, len(failures))
		return &domain.ProvisioningStatus{
			Status: domain.StateFailed,
			Info: &domain.Info{
				PublicInfo:  map[string]interface{}{"errors": failures},
				PrivateInfo: map[string]interface{}{},
			},
		}, nil
	}

	log.Printf("ACL update on %s completed", database)
	return &domain.ProvisioningStatus{
		Status: domain.StateCompleted,
		Info: &domain.Info{
			PublicInfo: map[string]interface{}{
				"updated_acls": granted,
				"removed_acls": revoked,
			},
			PrivateInfo: map[string]interface{}{},
		},
	}, nil
}

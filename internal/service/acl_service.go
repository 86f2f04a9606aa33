package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"mongoprov/internal/config"
	"mongoprov/internal/domain"
	"mongoprov/internal/naming"
	"mongoprov/internal/port"
)

// BindingSync reports the outcome of reconciling one role's bindings.
type BindingSync struct {
	Granted []string
	Revoked []string
	// Errors collects per-principal grant/revoke failures. A partial ACL
	// application is preferable to blocking the whole request, so these
	// are reported, not raised.
	Errors []string
}

// ACLManager creates roles and reconciles role bindings against the live
// database. It owns the diff algorithm shared by provision, unprovision and
// update-ACL.
type ACLManager interface {
	// EnsureDeveloperRole ensures the database-scoped developer role exists
	// and that every given principal holds it. Principals already bound and
	// bindings outside the given set are left untouched.
	EnsureDeveloperRole(ctx context.Context, database string, principals []string) error

	// EnsureConsumerRole ensures the collection-scoped consumer role exists
	// and carries the configured consumer action set, re-applying the
	// privileges when the role already exists so a previously stripped role
	// is healed on re-provision.
	EnsureConsumerRole(ctx context.Context, database, collection string) error

	// SyncConsumerBindings makes the consumer role's binding set equal to
	// the requested principals: stale bindings are revoked, missing ones
	// granted, principals in both are untouched. Principals already holding
	// the developer role are never granted the consumer role.
	SyncConsumerBindings(ctx context.Context, database, collection string, requested []string) (*BindingSync, error)

	// UnbindAllConsumers revokes the consumer role from every principal
	// holding it. The role object persists for reuse.
	UnbindAllConsumers(ctx context.Context, database, collection string) ([]string, error)

	// StripConsumerPrivileges empties the consumer role's privilege list
	// and revokes the grant from every holder, keeping the role defined.
	StripConsumerPrivileges(ctx context.Context, database, collection string) error
}

// Diff computes the bind/unbind sets that turn the current binding set into
// the requested one. Pure; both outputs are sorted and deduplicated. It must
// be computed in full before any mutation is issued.
func Diff(current, requested []string) (toBind, toUnbind []string) {
	currentSet := toSet(current)
	requestedSet := toSet(requested)

	for p := range requestedSet {
		if !currentSet[p] {
			toBind = append(toBind, p)
		}
	}
	for p := range currentSet {
		if !requestedSet[p] {
			toUnbind = append(toUnbind, p)
		}
	}
	sort.Strings(toBind)
	sort.Strings(toUnbind)
	return toBind, toUnbind
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

type aclManager struct {
	db  port.DatabaseClient
	cfg *config.MongoDBConfig
}

// NewACLManager creates the ACLManager implementation.
func NewACLManager(db port.DatabaseClient, cfg *config.MongoDBConfig) ACLManager {
	return &aclManager{db: db, cfg: cfg}
}

func (m *aclManager) EnsureDeveloperRole(ctx context.Context, database string, principals []string) error {
	role := naming.DeveloperRole(database)
	exists, err := m.db.RoleExists(ctx, database, role)
	if err != nil {
		return err
	}
	if !exists {
		inherited := make([]domain.RoleRef, 0, len(m.cfg.DeveloperRoles))
		for _, r := range m.cfg.DeveloperRoles {
			inherited = append(inherited, domain.RoleRef{Role: r, DB: database})
		}
		if err := m.db.CreateRole(ctx, database, role, nil, inherited); err != nil {
			return err
		}
		log.Printf("created developer role %s", role)
	}

	current, err := m.db.UsersWithRole(ctx, domain.RoleRef{Role: role, DB: database})
	if err != nil {
		return err
	}
	toBind, _ := Diff(current, principals)
	for _, principal := range toBind {
		if err := m.db.GrantRole(ctx, principal, domain.RoleRef{Role: role, DB: database}); err != nil {
			return err
		}
		log.Printf("granted role %s to %s", role, principal)
	}
	return nil
}

func (m *aclManager) EnsureConsumerRole(ctx context.Context, database, collection string) error {
	role := naming.ConsumerRole(database, collection)
	privileges := []domain.Privilege{{
		Resource: domain.Resource{DB: database, Collection: collection},
		Actions:  m.cfg.ConsumerActions,
	}}

	exists, err := m.db.RoleExists(ctx, database, role)
	if err != nil {
		return err
	}
	if !exists {
		if err := m.db.CreateRole(ctx, database, role, privileges, nil); err != nil {
			return err
		}
		log.Printf("created consumer role %s", role)
		return nil
	}
	// Re-apply the action set so a role stripped by a previous
	// unprovision(removedata=false) is restored.
	return m.db.SetRolePrivileges(ctx, database, role, privileges)
}

func (m *aclManager) SyncConsumerBindings(ctx context.Context, database, collection string, requested []string) (*BindingSync, error) {
	role := domain.RoleRef{Role: naming.ConsumerRole(database, collection), DB: database}
	devRole := domain.RoleRef{Role: naming.DeveloperRole(database), DB: database}

	current, err := m.db.UsersWithRole(ctx, role)
	if err != nil {
		return nil, err
	}
	developers, err := m.db.UsersWithRole(ctx, devRole)
	if err != nil {
		return nil, err
	}
	developerSet := toSet(developers)

	// The full diff is computed before any grant or revoke is issued.
	toBind, toUnbind := Diff(current, requested)

	sync := &BindingSync{}
	for _, principal := range toUnbind {
		if err := m.db.RevokeRole(ctx, principal, role); err != nil {
			msg := fmt.Sprintf("failed to revoke role %s from %s: %v", role.Role, principal, err)
			log.Printf("WARN %s", msg)
			sync.Errors = append(sync.Errors, msg)
			continue
		}
		sync.Revoked = append(sync.Revoked, principal)
	}
	for _, principal := range toBind {
		if developerSet[principal] {
			log.Printf("principal %s already holds %s, skipping consumer grant", principal, devRole.Role)
			continue
		}
		if err := m.db.GrantRole(ctx, principal, role); err != nil {
			msg := fmt.Sprintf("failed to grant role %s to %s: %v", role.Role, principal, err)
			log.Printf("WARN %s", msg)
			sync.Errors = append(sync.Errors, msg)
			continue
		}
		sync.Granted = append(sync.Granted, principal)
	}
	return sync, nil
}

func (m *aclManager) UnbindAllConsumers(ctx context.Context, database, collection string) ([]string, error) {
	role := domain.RoleRef{Role: naming.ConsumerRole(database, collection), DB: database}

	exists, err := m.db.RoleExists(ctx, database, role.Role)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	holders, err := m.db.UsersWithRole(ctx, role)
	if err != nil {
		return nil, err
	}
	revoked := make([]string, 0, len(holders))
	for _, principal := range holders {
		if err := m.db.RevokeRole(ctx, principal, role); err != nil {
			return revoked, err
		}
		revoked = append(revoked, principal)
	}
	return revoked, nil
}

func (m *aclManager) StripConsumerPrivileges(ctx context.Context, database, collection string) error {
	role := naming.ConsumerRole(database, collection)

	exists, err := m.db.RoleExists(ctx, database, role)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := m.db.SetRolePrivileges(ctx, database, role, nil); err != nil {
		return err
	}
	if _, err := m.UnbindAllConsumers(ctx, database, collection); err != nil {
		return err
	}
	log.Printf("stripped privileges from role %s, role kept for reuse", role)
	return nil
}

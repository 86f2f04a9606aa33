package port

import (
	"context"

	"mongoprov/internal/domain"
)

// DatabaseClient abstracts the document database capability the adapter
// reconciles against. Implementations issue single commands only; all
// reconciliation policy (idempotence, diffing, ordering) lives in the
// services so it can be tested against this interface.
//
// Every method re-derives truth from the live database. Implementations
// must not cache state across calls, since operators can change the
// database underneath the adapter at any time.
type DatabaseClient interface {
	// Ping verifies connectivity, for readiness checks.
	Ping(ctx context.Context) error

	// DatabaseExists reports whether the database is materialized, i.e.
	// holds at least one collection or document.
	DatabaseExists(ctx context.Context, database string) (bool, error)

	// ListCollections returns the collections of a database together with
	// their current schema validators. A non-empty names slice restricts
	// the listing to those collections.
	ListCollections(ctx context.Context, database string, names []string) ([]domain.CollectionInfo, error)

	// CreateCollection creates a collection with an optional validator.
	// A nil validator creates a plain collection.
	CreateCollection(ctx context.Context, database, collection string, validator map[string]interface{}) error

	// UpdateValidator re-applies the schema validator of an existing
	// collection (collMod).
	UpdateValidator(ctx context.Context, database, collection string, validator map[string]interface{}) error

	// DropCollection drops a collection. Dropping an absent collection is
	// not an error.
	DropCollection(ctx context.Context, database, collection string) error

	// RoleExists reports whether a role is defined on the database.
	RoleExists(ctx context.Context, database, role string) (bool, error)

	// CreateRole defines a role with the given privileges, inheriting from
	// the given roles.
	CreateRole(ctx context.Context, database, role string, privileges []domain.Privilege, inherited []domain.RoleRef) error

	// SetRolePrivileges replaces a role's privilege list. An empty list
	// strips the role of all privileges while keeping the role defined.
	SetRolePrivileges(ctx context.Context, database, role string, privileges []domain.Privilege) error

	// GrantRole binds a role to a principal. Granting an already-held role
	// is a no-op.
	GrantRole(ctx context.Context, principal string, role domain.RoleRef) error

	// RevokeRole removes one role binding from a principal, leaving the
	// principal and its other roles untouched.
	RevokeRole(ctx context.Context, principal string, role domain.RoleRef) error

	// UsersWithRole returns the principals currently holding a role.
	UsersWithRole(ctx context.Context, role domain.RoleRef) ([]string, error)

	// UserExists reports whether a principal is present in the users
	// database backing the principal directory.
	UserExists(ctx context.Context, principal string) (bool, error)
}

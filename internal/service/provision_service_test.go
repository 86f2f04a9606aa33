package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mongoprov/internal/config"
	"mongoprov/internal/descriptor"
	"mongoprov/internal/domain"
	"mongoprov/internal/identity"
	"mongoprov/internal/port"
	"mongoprov/internal/service"
)

const (
	templateID    = "urn:dmb:utm:mongo-outputport-template:0.0.0"
	subTemplateID = "urn:dmb:utm:mongo-collection-template:0.0.0"
)

// fakeDB is an in-memory DatabaseClient. Idempotence properties need state
// that changes as the services mutate it, which a canned mock cannot give.
type fakeDB struct {
	collections map[string]map[string]map[string]interface{}
	roles       map[string]map[string]*fakeRole
	users       map[string]bool
	bindings    map[string]map[domain.RoleRef]bool
}

type fakeRole struct {
	privileges []domain.Privilege
	inherited  []domain.RoleRef
}

var _ port.DatabaseClient = (*fakeDB)(nil)

func newFakeDB(users ...string) *fakeDB {
	f := &fakeDB{
		collections: map[string]map[string]map[string]interface{}{},
		roles:       map[string]map[string]*fakeRole{},
		users:       map[string]bool{},
		bindings:    map[string]map[domain.RoleRef]bool{},
	}
	for _, u := range users {
		f.users[u] = true
	}
	return f
}

func (f *fakeDB) Ping(context.Context) error { return nil }

func (f *fakeDB) DatabaseExists(_ context.Context, database string) (bool, error) {
	return len(f.collections[database]) > 0, nil
}

func (f *fakeDB) ListCollections(_ context.Context, database string, names []string) ([]domain.CollectionInfo, error) {
	var out []domain.CollectionInfo
	for name, validator := range f.collections[database] {
		if len(names) > 0 && !contains(names, name) {
			continue
		}
		out = append(out, domain.CollectionInfo{Name: name, Validator: validator})
	}
	return out, nil
}

func (f *fakeDB) CreateCollection(_ context.Context, database, collection string, validator map[string]interface{}) error {
	if f.collections[database] == nil {
		f.collections[database] = map[string]map[string]interface{}{}
	}
	if _, ok := f.collections[database][collection]; ok {
		return fmt.Errorf("collection %s.%s already exists: %w", database, collection, domain.ErrInfrastructure)
	}
	f.collections[database][collection] = validator
	return nil
}

func (f *fakeDB) UpdateValidator(_ context.Context, database, collection string, validator map[string]interface{}) error {
	if _, ok := f.collections[database][collection]; !ok {
		return fmt.Errorf("collection %s.%s missing: %w", database, collection, domain.ErrInfrastructure)
	}
	f.collections[database][collection] = validator
	return nil
}

func (f *fakeDB) DropCollection(_ context.Context, database, collection string) error {
	delete(f.collections[database], collection)
	return nil
}

func (f *fakeDB) RoleExists(_ context.Context, database, role string) (bool, error) {
	_, ok := f.roles[database][role]
	return ok, nil
}

func (f *fakeDB) CreateRole(_ context.Context, database, role string, privileges []domain.Privilege, inherited []domain.RoleRef) error {
	if f.roles[database] == nil {
		f.roles[database] = map[string]*fakeRole{}
	}
	if _, ok := f.roles[database][role]; ok {
		return fmt.Errorf("role %s already exists: %w", role, domain.ErrInfrastructure)
	}
	f.roles[database][role] = &fakeRole{privileges: privileges, inherited: inherited}
	return nil
}

func (f *fakeDB) SetRolePrivileges(_ context.Context, database, role string, privileges []domain.Privilege) error {
	r, ok := f.roles[database][role]
	if !ok {
		return fmt.Errorf("role %s missing: %w", role, domain.ErrInfrastructure)
	}
	r.privileges = privileges
	return nil
}

func (f *fakeDB) GrantRole(_ context.Context, principal string, role domain.RoleRef) error {
	if f.bindings[principal] == nil {
		f.bindings[principal] = map[domain.RoleRef]bool{}
	}
	f.bindings[principal][role] = true
	return nil
}

func (f *fakeDB) RevokeRole(_ context.Context, principal string, role domain.RoleRef) error {
	delete(f.bindings[principal], role)
	return nil
}

func (f *fakeDB) UsersWithRole(_ context.Context, role domain.RoleRef) ([]string, error) {
	var out []string
	for principal, roles := range f.bindings {
		if roles[role] {
			out = append(out, principal)
		}
	}
	return out, nil
}

func (f *fakeDB) UserExists(_ context.Context, principal string) (bool, error) {
	return f.users[principal], nil
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

func newProvisionService(db *fakeDB) service.ProvisionService {
	cfg := &config.MongoDBConfig{
		UsersDatabase:   "admin",
		DeveloperRoles:  []string{"readWrite"},
		ConsumerActions: []string{"find"},
	}
	parser := descriptor.NewParser(config.TemplateConfig{ID: templateID, SubID: subTemplateID})
	resolver := identity.NewResolver(db)
	return service.NewProvisionService(db, parser, resolver, service.NewACLManager(db, cfg))
}

const provisionDescriptor = `
dataProduct:
  domain: finance
  system: orders
  version: 1
  environment: dev
  dataProductOwner: user:jane_doe.com
  devGroup:
    - user:bob_corp.com
    - user:ghost_corp.com
  components:
    - id: comp-1
      useCaseTemplateId: urn:dmb:utm:mongo-outputport-template:0.0.0
      components:
        - collection: orders
          schema: '{"$jsonSchema":{"bsonType":"object"}}'
        - collection: invoices
componentIdToProvision: comp-1
`

func TestProvision_CreatesResourcesAndBindings(t *testing.T) {
	db := newFakeDB("jane@doe.com", "bob@corp.com")
	svc := newProvisionService(db)

	status, err := svc.Provision(context.Background(), provisionDescriptor, "")

	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, status.Status)

	assert.Contains(t, db.collections["finance_orders_1_dev"], "orders")
	assert.Contains(t, db.collections["finance_orders_1_dev"], "invoices")
	assert.Equal(t, map[string]interface{}{
		"$jsonSchema": map[string]interface{}{"bsonType": "object"},
	}, db.collections["finance_orders_1_dev"]["orders"])

	devRole := domain.RoleRef{Role: "finance_orders_1_dev_developer", DB: "finance_orders_1_dev"}
	assert.True(t, db.bindings["jane@doe.com"][devRole])
	assert.True(t, db.bindings["bob@corp.com"][devRole])
	assert.Contains(t, db.roles["finance_orders_1_dev"], "finance_orders_1_dev_orders_consumer")
	assert.Contains(t, db.roles["finance_orders_1_dev"], "finance_orders_1_dev_invoices_consumer")

	// The unresolvable group member is reported, not fatal.
	warnings, ok := status.Info.PublicInfo["warnings"].([]string)
	require.True(t, ok)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "ghost_corp.com")
}

func TestProvision_Idempotent(t *testing.T) {
	db := newFakeDB("jane@doe.com", "bob@corp.com")
	svc := newProvisionService(db)

	_, err := svc.Provision(context.Background(), provisionDescriptor, "")
	require.NoError(t, err)

	snapshotCollections := fmt.Sprintf("%v", db.collections)
	snapshotBindings := fmt.Sprintf("%v", db.bindings)

	status, err := svc.Provision(context.Background(), provisionDescriptor, "")

	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, status.Status)
	assert.Equal(t, snapshotCollections, fmt.Sprintf("%v", db.collections))
	assert.Equal(t, snapshotBindings, fmt.Sprintf("%v", db.bindings))
}

func TestProvision_ValidatorDriftHealed(t *testing.T) {
	db := newFakeDB("jane@doe.com", "bob@corp.com")
	svc := newProvisionService(db)

	_, err := svc.Provision(context.Background(), provisionDescriptor, "")
	require.NoError(t, err)

	// Simulate operator drift between runs.
	db.collections["finance_orders_1_dev"]["orders"] = map[string]interface{}{"tampered": true}

	_, err = svc.Provision(context.Background(), provisionDescriptor, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"$jsonSchema": map[string]interface{}{"bsonType": "object"},
	}, db.collections["finance_orders_1_dev"]["orders"])
}

func TestProvision_UnknownOwnerIsFatal(t *testing.T) {
	db := newFakeDB("bob@corp.com")
	svc := newProvisionService(db)

	_, err := svc.Provision(context.Background(), provisionDescriptor, "")

	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
	assert.Empty(t, db.collections)
}

func TestProvision_TemplateMismatchIsValidationError(t *testing.T) {
	db := newFakeDB("jane@doe.com")
	svc := newProvisionService(db)

	raw := `
dataProduct:
  domain: d
  system: s
  version: 1
  environment: dev
  dataProductOwner: user:jane_doe.com
  components:
    - id: comp-1
      useCaseTemplateId: urn:dmb:utm:wrong-template:0.0.0
      components:
        - collection: orders
componentIdToProvision: comp-1
`
	_, err := svc.Provision(context.Background(), raw, "")

	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
	assert.Empty(t, db.collections)
}

func TestUnprovision_RemoveData_DropsAndUnbinds(t *testing.T) {
	db := newFakeDB("jane@doe.com", "bob@corp.com", "consumer@corp.com")
	svc := newProvisionService(db)

	_, err := svc.Provision(context.Background(), provisionDescriptor, "")
	require.NoError(t, err)

	consumerRole := domain.RoleRef{Role: "finance_orders_1_dev_orders_consumer", DB: "finance_orders_1_dev"}
	require.NoError(t, db.GrantRole(context.Background(), "consumer@corp.com", consumerRole))

	status, err := svc.Unprovision(context.Background(), provisionDescriptor, "", true)

	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, status.Status)
	assert.Empty(t, db.collections["finance_orders_1_dev"])
	assert.False(t, db.bindings["consumer@corp.com"][consumerRole])

	// Developer bindings are untouched.
	devRole := domain.RoleRef{Role: "finance_orders_1_dev_developer", DB: "finance_orders_1_dev"}
	assert.True(t, db.bindings["jane@doe.com"][devRole])

	// The emptied role persists for reuse.
	assert.Contains(t, db.roles["finance_orders_1_dev"], consumerRole.Role)
}

func TestUnprovision_RemoveData_RepeatSucceeds(t *testing.T) {
	db := newFakeDB("jane@doe.com", "bob@corp.com")
	svc := newProvisionService(db)

	_, err := svc.Provision(context.Background(), provisionDescriptor, "")
	require.NoError(t, err)

	_, err = svc.Unprovision(context.Background(), provisionDescriptor, "", true)
	require.NoError(t, err)

	status, err := svc.Unprovision(context.Background(), provisionDescriptor, "", true)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, status.Status)
}

func TestUnprovision_KeepData_StripsPrivilegesKeepsCollections(t *testing.T) {
	db := newFakeDB("jane@doe.com", "bob@corp.com", "consumer@corp.com")
	svc := newProvisionService(db)

	_, err := svc.Provision(context.Background(), provisionDescriptor, "")
	require.NoError(t, err)

	consumerRole := domain.RoleRef{Role: "finance_orders_1_dev_orders_consumer", DB: "finance_orders_1_dev"}
	require.NoError(t, db.GrantRole(context.Background(), "consumer@corp.com", consumerRole))

	status, err := svc.Unprovision(context.Background(), provisionDescriptor, "", false)

	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, status.Status)

	// Data preserved, privileges and bindings gone, role object kept.
	assert.Contains(t, db.collections["finance_orders_1_dev"], "orders")
	assert.Empty(t, db.roles["finance_orders_1_dev"][consumerRole.Role].privileges)
	assert.False(t, db.bindings["consumer@corp.com"][consumerRole])
	assert.Contains(t, db.roles["finance_orders_1_dev"], consumerRole.Role)
}

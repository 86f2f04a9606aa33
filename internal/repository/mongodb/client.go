// Package mongodb implements port.DatabaseClient on top of the official
// MongoDB driver. Role and user management goes through database commands
// (createRole, rolesInfo, grantRolesToUser, usersInfo, collMod), since the
// driver exposes no typed API for them.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"mongoprov/internal/config"
	"mongoprov/internal/domain"
	"mongoprov/internal/port"
)

// Client is the mongo-driver backed DatabaseClient.
type Client struct {
	client  *mongo.Client
	usersDB string
	timeout time.Duration
}

var _ port.DatabaseClient = (*Client)(nil)

// NewClient connects to MongoDB using the configured URI. The configured
// timeout bounds every outbound call.
func NewClient(cfg *config.MongoDBConfig) (*Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	return &Client{
		client:  client,
		usersDB: cfg.UsersDatabase,
		timeout: cfg.Timeout,
	}, nil
}

// Close disconnects the underlying driver client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return infra("pinging mongodb", err)
	}
	return nil
}

func (c *Client) DatabaseExists(ctx context.Context, database string) (bool, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	names, err := c.client.ListDatabaseNames(ctx, bson.D{{Key: "name", Value: database}})
	if err != nil {
		return false, infra(fmt.Sprintf("listing databases matching %s", database), err)
	}
	return len(names) > 0, nil
}

func (c *Client) ListCollections(ctx context.Context, database string, names []string) ([]domain.CollectionInfo, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	filter := bson.D{}
	if len(names) > 0 {
		filter = bson.D{{Key: "name", Value: bson.D{{Key: "$in", Value: names}}}}
	}
	cmd := bson.D{
		{Key: "listCollections", Value: 1},
		{Key: "filter", Value: filter},
	}
	var reply struct {
		Cursor struct {
			FirstBatch []struct {
				Name    string `bson:"name"`
				Options struct {
					Validator bson.M `bson:"validator"`
				} `bson:"options"`
			} `bson:"firstBatch"`
		} `bson:"cursor"`
	}
	if err := c.client.Database(database).RunCommand(ctx, cmd).Decode(&reply); err != nil {
		return nil, infra(fmt.Sprintf("listing collections of %s", database), err)
	}

	infos := make([]domain.CollectionInfo, 0, len(reply.Cursor.FirstBatch))
	for _, coll := range reply.Cursor.FirstBatch {
		infos = append(infos, domain.CollectionInfo{
			Name:      coll.Name,
			Validator: normalizeDocument(coll.Options.Validator),
		})
	}
	return infos, nil
}

func (c *Client) CreateCollection(ctx context.Context, database, collection string, validator map[string]interface{}) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	opts := options.CreateCollection()
	if len(validator) > 0 {
		opts = opts.SetValidator(validator)
	}
	if err := c.client.Database(database).CreateCollection(ctx, collection, opts); err != nil {
		return infra(fmt.Sprintf("creating collection %s.%s", database, collection), err)
	}
	return nil
}

func (c *Client) UpdateValidator(ctx context.Context, database, collection string, validator map[string]interface{}) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if validator == nil {
		validator = map[string]interface{}{}
	}
	cmd := bson.D{
		{Key: "collMod", Value: collection},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
	}
	if err := c.client.Database(database).RunCommand(ctx, cmd).Err(); err != nil {
		return infra(fmt.Sprintf("updating validator of %s.%s", database, collection), err)
	}
	return nil
}

func (c *Client) DropCollection(ctx context.Context, database, collection string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	// The driver suppresses NamespaceNotFound, so dropping an absent
	// collection already reports success.
	if err := c.client.Database(database).Collection(collection).Drop(ctx); err != nil {
		return infra(fmt.Sprintf("dropping collection %s.%s", database, collection), err)
	}
	return nil
}

func (c *Client) RoleExists(ctx context.Context, database, role string) (bool, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	cmd := bson.D{
		{Key: "rolesInfo", Value: role},
		{Key: "showPrivileges", Value: true},
	}
	var reply struct {
		Roles []bson.M `bson:"roles"`
	}
	if err := c.client.Database(database).RunCommand(ctx, cmd).Decode(&reply); err != nil {
		return false, infra(fmt.Sprintf("reading role %s in %s", role, database), err)
	}
	return len(reply.Roles) > 0, nil
}

func (c *Client) CreateRole(ctx context.Context, database, role string, privileges []domain.Privilege, inherited []domain.RoleRef) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	// createRole rejects null arrays, so nil slices become empty ones.
	if privileges == nil {
		privileges = []domain.Privilege{}
	}
	if inherited == nil {
		inherited = []domain.RoleRef{}
	}
	cmd := bson.D{
		{Key: "createRole", Value: role},
		{Key: "privileges", Value: privileges},
		{Key: "roles", Value: inherited},
	}
	if err := c.client.Database(database).RunCommand(ctx, cmd).Err(); err != nil {
		return infra(fmt.Sprintf("creating role %s in %s", role, database), err)
	}
	return nil
}

func (c *Client) SetRolePrivileges(ctx context.Context, database, role string, privileges []domain.Privilege) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if privileges == nil {
		privileges = []domain.Privilege{}
	}
	cmd := bson.D{
		{Key: "updateRole", Value: role},
		{Key: "privileges", Value: privileges},
	}
	if err := c.client.Database(database).RunCommand(ctx, cmd).Err(); err != nil {
		return infra(fmt.Sprintf("updating privileges of role %s in %s", role, database), err)
	}
	return nil
}

func (c *Client) GrantRole(ctx context.Context, principal string, role domain.RoleRef) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	cmd := bson.D{
		{Key: "grantRolesToUser", Value: principal},
		{Key: "roles", Value: []domain.RoleRef{role}},
	}
	if err := c.client.Database(c.usersDB).RunCommand(ctx, cmd).Err(); err != nil {
		return infra(fmt.Sprintf("granting role %s to %s", role.Role, principal), err)
	}
	return nil
}

func (c *Client) RevokeRole(ctx context.Context, principal string, role domain.RoleRef) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	cmd := bson.D{
		{Key: "revokeRolesFromUser", Value: principal},
		{Key: "roles", Value: []domain.RoleRef{role}},
	}
	if err := c.client.Database(c.usersDB).RunCommand(ctx, cmd).Err(); err != nil {
		return infra(fmt.Sprintf("revoking role %s from %s", role.Role, principal), err)
	}
	return nil
}

func (c *Client) UsersWithRole(ctx context.Context, role domain.RoleRef) ([]string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	cmd := bson.D{
		{Key: "usersInfo", Value: 1},
		{Key: "filter", Value: bson.D{{Key: "roles", Value: role}}},
	}
	var reply struct {
		Users []struct {
			User string `bson:"user"`
		} `bson:"users"`
	}
	if err := c.client.Database(c.usersDB).RunCommand(ctx, cmd).Decode(&reply); err != nil {
		return nil, infra(fmt.Sprintf("listing users with role %s", role.Role), err)
	}
	users := make([]string, 0, len(reply.Users))
	for _, u := range reply.Users {
		users = append(users, u.User)
	}
	return users, nil
}

func (c *Client) UserExists(ctx context.Context, principal string) (bool, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	cmd := bson.D{{Key: "usersInfo", Value: principal}}
	var reply struct {
		Users []bson.M `bson:"users"`
	}
	if err := c.client.Database(c.usersDB).RunCommand(ctx, cmd).Decode(&reply); err != nil {
		return false, infra(fmt.Sprintf("looking up user %s", principal), err)
	}
	return len(reply.Users) > 0, nil
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func infra(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrInfrastructure)
}

// normalizeDocument converts the bson document types the driver decodes
// into plain maps and slices, so validators compare and serialize the same
// way regardless of which call produced them.
func normalizeDocument(doc bson.M) map[string]interface{} {
	if doc == nil {
		return nil
	}
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.M:
		return normalizeDocument(t)
	case bson.D:
		out := make(map[string]interface{}, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case int32:
		return int(t)
	case int64:
		return int(t)
	default:
		return v
	}
}

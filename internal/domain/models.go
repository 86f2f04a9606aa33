package domain

// ComponentDescriptor is the validated, structured view of an inbound
// provisioning request. It is immutable once parsed; a new one is built for
// every request and discarded when the request completes.
type ComponentDescriptor struct {
	Domain             string
	System             string
	SystemMajorVersion int
	Environment        string
	Owner              string
	DeveloperGroup     []string
	ComponentID        string
	UseCaseTemplateID  string
	Collections        []CollectionSpec
}

// CollectionSpec describes one collection owned by a component.
type CollectionSpec struct {
	Name              string
	UseCaseTemplateID string
	// Validator is the decoded $jsonSchema validator document, nil when the
	// descriptor carries no schema.
	Validator  map[string]interface{}
	RemoveData bool
}

// CollectionInfo is the live state of a collection as read from the database.
type CollectionInfo struct {
	Name      string
	Validator map[string]interface{}
}

// Resource identifies the target of a privilege: a whole database when
// Collection is empty, otherwise a single (database, collection) pair.
type Resource struct {
	DB         string `bson:"db" json:"db"`
	Collection string `bson:"collection" json:"collection"`
}

// Privilege is one entry of a role's privilege list.
type Privilege struct {
	Resource Resource `bson:"resource" json:"resource"`
	Actions  []string `bson:"actions" json:"actions"`
}

// RoleRef names a role scoped to a database, as used in role inheritance
// and in grant/revoke commands.
type RoleRef struct {
	Role string `bson:"role" json:"role"`
	DB   string `bson:"db" json:"db"`
}

// CollectionFragment is one entry of a reverse provisioning result: a
// collection name plus its current validator, if any.
type CollectionFragment struct {
	Collection string
	Validator  map[string]interface{}
}

// ReverseImportResult is the ordered sequence of collection fragments
// produced by a reverse provisioning call. Callers persist it; the adapter
// does not.
type ReverseImportResult struct {
	Database  string
	Fragments []CollectionFragment
}

// Info carries the public and private details attached to a provisioning
// outcome. Public info is shown to the requester by the platform.
type Info struct {
	PublicInfo  map[string]interface{} `json:"publicInfo"`
	PrivateInfo map[string]interface{} `json:"privateInfo"`
}

// ProvisioningStatus is the synchronous outcome of a provision, unprovision
// or update-ACL operation.
type ProvisioningStatus struct {
	Status ProvisioningState `json:"status"`
	Result string            `json:"result"`
	Info   *Info             `json:"info,omitempty"`
}

// ValidationResult is the outcome of a validate operation.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

package domain

// ProvisioningState is the lifecycle state reported for an operation.
type ProvisioningState string

const (
	StateCompleted ProvisioningState = "COMPLETED"
	StateFailed    ProvisioningState = "FAILED"
	StateRunning   ProvisioningState = "RUNNING"
)

// DescriptorKind identifies the granularity of an inbound descriptor.
type DescriptorKind string

const (
	KindComponentDescriptor   DescriptorKind = "COMPONENT_DESCRIPTOR"
	KindDataProductDescriptor DescriptorKind = "DATAPRODUCT_DESCRIPTOR"
)

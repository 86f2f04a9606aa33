// Package naming derives canonical database and role names from component
// coordinates. All functions are pure and case-preserving; character
// validation is a descriptor concern handled upstream.
package naming

import "fmt"

// DatabaseName returns the canonical database name for a component:
// <domain>_<system>_<systemMajorVersion>_<environment>.
func DatabaseName(domain, system string, systemMajorVersion int, environment string) string {
	return fmt.Sprintf("%s_%s_%d_%s", domain, system, systemMajorVersion, environment)
}

// DeveloperRole returns the database-scoped developer role name.
func DeveloperRole(database string) string {
	return database + "_developer"
}

// ConsumerRole returns the collection-scoped consumer role name.
func ConsumerRole(database, collection string) string {
	return fmt.Sprintf("%s_%s_consumer", database, collection)
}

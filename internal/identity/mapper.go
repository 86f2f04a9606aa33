// Package identity maps platform identities (owners, developer group
// members, consumer references) to database principal names.
package identity

import (
	"context"
	"fmt"
	"log"
	"strings"

	"mongoprov/internal/domain"
	"mongoprov/internal/port"
)

const userPrefix = "user:"

// Resolver maps a platform identity to a database principal.
type Resolver interface {
	// Resolve maps one identity, failing with domain.ErrIdentityNotFound
	// when no corresponding principal exists. Callers decide whether that
	// is fatal (a system owner) or skippable (an ACL reference).
	Resolve(ctx context.Context, ref string) (string, error)

	// ResolveAll maps a set of identities, dropping unresolvable ones with
	// a warning instead of failing. The skipped slice carries one message
	// per dropped identity.
	ResolveAll(ctx context.Context, refs []string) (principals []string, skipped []string)
}

type resolver struct {
	db port.DatabaseClient
}

// NewResolver creates a Resolver backed by the principal directory in the
// users database.
func NewResolver(db port.DatabaseClient) Resolver {
	return &resolver{db: db}
}

func (r *resolver) Resolve(ctx context.Context, ref string) (string, error) {
	principal, err := mapSubject(ref)
	if err != nil {
		return "", err
	}
	exists, err := r.db.UserExists(ctx, principal)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("no database user for identity %q (principal %q): %w",
			ref, principal, domain.ErrIdentityNotFound)
	}
	return principal, nil
}

func (r *resolver) ResolveAll(ctx context.Context, refs []string) ([]string, []string) {
	var principals, skipped []string
	for _, ref := range refs {
		principal, err := r.Resolve(ctx, ref)
		if err != nil {
			msg := fmt.Sprintf("failed to map identity %q: %v", ref, err)
			log.Printf("WARN %s", msg)
			skipped = append(skipped, msg)
			continue
		}
		principals = append(principals, principal)
	}
	return principals, skipped
}

// mapSubject derives the principal name from a platform identity reference.
// A "user:" subject of the form name_domain.com maps to the mail principal
// name@domain.com: the last underscore separates the local part from the
// domain. A subject without an underscore is already a principal name.
func mapSubject(ref string) (string, error) {
	if !strings.HasPrefix(ref, userPrefix) {
		return "", fmt.Errorf("subject %q is not a platform user: %w", ref, domain.ErrIdentityNotFound)
	}
	user := strings.TrimPrefix(ref, userPrefix)
	idx := strings.LastIndex(user, "_")
	if idx == -1 {
		return user, nil
	}
	return user[:idx] + "@" + user[idx+1:], nil
}

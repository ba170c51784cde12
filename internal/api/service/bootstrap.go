package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aussiebroadwan/storefront/internal/api/audit"
	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/store"
)

// bootstrapRequest is what audit entries written at startup point at.
var bootstrapRequest = audit.RequestContext{Method: "BOOTSTRAP", URL: "-", RouteTemplate: "-", RoutePrefix: "-"}

// EnsureAdmin makes sure an admin account exists for email. A missing
// account is created with password, an existing one is granted the admin
// role and keeps its password. It is safe to call on every start.
func (s *UserService) EnsureAdmin(ctx context.Context, email, name, password string) (domain.User, bool, error) {
	var (
		u       domain.User
		changed bool
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByEmail(ctx, email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			u, err = newUser(ctx, tx, email, name, password, []string{domain.RoleAdmin}, s.now())
			if err != nil {
				return err
			}
			changed = true

			change := audit.Created(&u, watchedUserFields...)
			_, err = s.Audit.WithStore(tx).Append(ctx, bootstrapRequest, audit.Entry{
				Activity: "created user",
				Type:     domain.AuditTypeAdmin,
				Object:   &u,
				Change:   &change,
			})
			return err
		case err != nil:
			return fmt.Errorf("lookup admin: %w", err)
		}

		u = existing
		if u.HasRole(domain.RoleAdmin) {
			return nil
		}

		before := audit.Take(&u)
		u.Roles = append(slices.Clone(u.Roles), domain.RoleAdmin)
		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			return fmt.Errorf("grant admin: %w", err)
		}
		changed = true

		change := audit.Diff(before, &u, watchedUserFields...)
		_, err = s.Audit.WithStore(tx).Append(ctx, bootstrapRequest, audit.Entry{
			Activity: "updated user",
			Type:     domain.AuditTypeAdmin,
			Object:   &u,
			Change:   &change,
		})
		return err
	})
	if err != nil {
		return domain.User{}, false, err
	}
	return u, changed, nil
}

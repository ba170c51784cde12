package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/aussiebroadwan/storefront/internal/api/audit"
	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/store"
)

// Fields recorded when an admin changes an account.
var watchedUserFields = []string{"email", "roles"}

// ValidRole reports whether role can be stored. Roles are kept space
// delimited, so a role may not be blank or contain whitespace.
func ValidRole(role string) bool {
	return role != "" && !strings.ContainsFunc(role, unicode.IsSpace)
}

func validRoles(roles []string) bool {
	for _, role := range roles {
		if !ValidRole(role) {
			return false
		}
	}
	return true
}

type UserService struct {
	Store store.Store
	Audit *audit.Recorder
	Now   func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Me returns the signed in user.
func (s *UserService) Me(ctx context.Context, userID string) (domain.User, error) {
	return getUser(ctx, s.Store, userID)
}

type UpdateMeInput struct {
	Name *string
}

func (s *UserService) UpdateMe(ctx context.Context, userID string, in UpdateMeInput) (domain.User, error) {
	u, err := getUser(ctx, s.Store, userID)
	if err != nil {
		return domain.User{}, err
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return getUser(ctx, s.Store, userID)
}

// List returns every live user, optionally only those holding role.
func (s *UserService) List(ctx context.Context, role string) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	return getUser(ctx, s.Store, userID)
}

type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Roles    []string
}

// Create adds an account on behalf of an admin.
func (s *UserService) Create(ctx context.Context, rc audit.RequestContext, in CreateUserInput) (domain.User, error) {
	var u domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = newUser(ctx, tx, in.Email, in.Name, in.Password, in.Roles, s.now())
		if err != nil {
			return err
		}

		change := audit.Created(&u, watchedUserFields...)
		_, err = s.Audit.WithStore(tx).Append(ctx, rc, audit.Entry{
			Activity: "created user",
			Type:     domain.AuditTypeAdmin,
			Object:   &u,
			Change:   &change,
		})
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// UpdateUserInput patches an account. Nil fields are left alone.
type UpdateUserInput struct {
	Email *string
	Name  *string
	Roles *[]string
}

func (s *UserService) Update(ctx context.Context, rc audit.RequestContext, userID string, in UpdateUserInput) (domain.User, error) {
	var u domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = getUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		before := audit.Take(&u)
		if in.Email != nil {
			email := strings.TrimSpace(*in.Email)
			if email == "" {
				return ErrInvalidRequest
			}
			u.Email = email
		}
		if in.Name != nil {
			u.Name = strings.TrimSpace(*in.Name)
		}
		if in.Roles != nil {
			if !validRoles(*in.Roles) {
				return ErrInvalidRole
			}
			u.Roles = *in.Roles
		}

		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return fmt.Errorf("update user: %w", err)
		}

		change := audit.Diff(before, &u, watchedUserFields...)
		if _, err := s.Audit.WithStore(tx).Append(ctx, rc, audit.Entry{
			Activity: "updated user",
			Type:     domain.AuditTypeAdmin,
			Object:   &u,
			Change:   &change,
		}); err != nil {
			return err
		}

		u, err = getUser(ctx, tx, userID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Delete soft deletes an account. Its email can be registered again.
func (s *UserService) Delete(ctx context.Context, rc audit.RequestContext, userID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := getUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		if err := tx.Users().DeleteUser(ctx, u.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		change := audit.Deleted(&u)
		_, err = s.Audit.WithStore(tx).Append(ctx, rc, audit.Entry{
			Activity: "deleted user",
			Type:     domain.AuditTypeAdmin,
			Object:   &u,
			Change:   &change,
		})
		return err
	})
}

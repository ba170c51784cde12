package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/internal/api/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) ListUsers(ctx context.Context, role string) ([]domain.User, error) {
	rows, err := r.q.ListUsers(ctx, role)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, mapUser(row))
	}
	return users, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		PasswordHash:       u.PasswordHash,
		Roles:              joinRoles(u.Roles),
		MfaMethod:          string(u.MFAMethod),
		MfaSecret:          gen.NullString(u.MFASecret),
		MfaPhoneNumber:     gen.NullString(u.MFAPhoneNumber),
		LoginAttempts:      int64(u.LoginAttempts),
		LastLoginAttemptAt: mapOptionalTime(u.LastLoginAttemptAt),
		TempTokenID:        gen.NullString(u.TempTokenID),
		AuthTokenID:        gen.NullString(u.AuthTokenID),
		AccessConfirmedAt:  mapOptionalTime(u.AccessConfirmedAt),
		CreatedAt:          u.CreatedAt.UTC(),
		UpdatedAt:          u.UpdatedAt.UTC(),
	})
	return mapConstraint(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	n, err := r.q.UpdateUser(ctx, gen.UpdateUserParams{
		Email:              u.Email,
		Name:               u.Name,
		PasswordHash:       u.PasswordHash,
		Roles:              joinRoles(u.Roles),
		MfaMethod:          string(u.MFAMethod),
		MfaSecret:          gen.NullString(u.MFASecret),
		MfaPhoneNumber:     gen.NullString(u.MFAPhoneNumber),
		LoginAttempts:      int64(u.LoginAttempts),
		LastLoginAttemptAt: mapOptionalTime(u.LastLoginAttemptAt),
		TempTokenID:        gen.NullString(u.TempTokenID),
		AuthTokenID:        gen.NullString(u.AuthTokenID),
		AccessConfirmedAt:  mapOptionalTime(u.AccessConfirmedAt),
		UpdatedAt:          time.Now().UTC(),
		ID:                 u.ID,
	})
	if err != nil {
		return mapConstraint(err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	n, err := r.q.SoftDeleteUser(ctx, userID, time.Now().UTC())
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

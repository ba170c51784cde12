package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/store/drivers/sqlite/gen"
)

type backupCodesRepo struct {
	q *gen.Queries
}

// ReplaceBackupCodes is not atomic on its own; callers that need that run
// it inside WithTx.
func (r *backupCodesRepo) ReplaceBackupCodes(ctx context.Context, userID string, codeHashes []string) error {
	if err := r.q.DeleteAllBackupCodes(ctx, userID); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, hash := range codeHashes {
		if err := r.q.CreateBackupCode(ctx, gen.CreateBackupCodeParams{
			UserID:    userID,
			CodeHash:  hash,
			CreatedAt: now,
		}); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *backupCodesRepo) ConsumeBackupCode(ctx context.Context, userID string, codeHash string) (bool, error) {
	n, err := r.q.DeleteBackupCode(ctx, gen.DeleteBackupCodeParams{
		UserID:   userID,
		CodeHash: codeHash,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, userID string) error {
	return r.q.DeleteAllBackupCodes(ctx, userID)
}

func (r *backupCodesRepo) CountBackupCodes(ctx context.Context, userID string) (int, error) {
	count, err := r.q.CountUserBackupCodes(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

package learning

import (
	"context"

	"gorm.io/gorm"
)

// withTx binds ctx to tx, or to the repo's own handle when the caller is not in a transaction.
func withTx(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

package reservationRepo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithResourceTx runs fn inside a session transaction. Reads and writes
// issued with the callback's context join the transaction, so the
// check-then-reserve sequence commits or aborts as one unit. Business
// errors returned by fn abort the transaction and propagate unchanged.
//
// The resourceID parameter names the scope for callers; the transaction
// itself spans whatever fn touches. Serialization of concurrent callers on
// the same resource is the engine's per-resource lock, acquired before
// this call.
func (repo *MongoReservationRepo) WithResourceTx(ctx context.Context, resourceID string, fn func(txCtx context.Context) error) error {
	client := repo.reservationColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return fmt.Errorf("could not start transaction for resource %s: %w", resourceID, err)
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

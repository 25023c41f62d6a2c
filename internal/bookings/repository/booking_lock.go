package repository

import (
	"context"
	"fmt"
	"spacelink/pkg/config"
	mongotx "spacelink/pkg/db/mongo"
	"spacelink/pkg/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const LockCollectionName = "Booking_locks"

// Locker serializes booking writes for one property. AcquireLock returns a
// token that must be passed to ReleaseLock; ok is false while another holder
// owns an unexpired lock.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, key, token string) error
}

func PropertyLockKey(propertyID string) string {
	return "booking_lock_" + propertyID
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

func NewBookingLockRepository(cfg *config.Config) Locker {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
		now:        time.Now,
	}
}

// AcquireLock upserts the lock document only when it is missing or expired.
// A live lock makes the upsert collide on _id, which reports ok=false.
func (r *mongoBookingLockRepository) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := r.now().UTC()
	lock := model.BookingLock{
		ID:        key,
		Owner:     uuid.NewString(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	filter := bson.M{"_id": key, "expires_at": bson.M{"$lt": now}}
	update := bson.M{"$set": bson.M{
		"owner":      lock.Owner,
		"expires_at": lock.ExpiresAt,
		"created_at": lock.CreatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to acquire booking lock: %w", err)
	}

	return lock.Owner, true, nil
}

func (r *mongoBookingLockRepository) ReleaseLock(ctx context.Context, key, token string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": token}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}

package databases

//go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carhive/carhive-api/models"
)

const schedulerLockName = "schedulerLocks"

// SchedulerLockDatabase provides a best-effort distributed lock so scheduled
// jobs run on exactly one instance at a time
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, jobName, instanceID string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock inserts a lock document for jobName unless a non-expired
// one already exists. jobName carries a unique index, so two instances
// racing on the insert cannot both win.
func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()

	// clear an expired lock left by a crashed instance
	_ = s.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{
		"jobName":   jobName,
		"expiresAt": bson.M{"$lt": now},
	})

	lock := models.SchedulerLock{
		JobName:    jobName,
		InstanceID: instanceID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	_, err := s.db.Collection(schedulerLockName).InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, jobName, instanceID string) error {
	return s.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{
		"jobName":    jobName,
		"instanceID": instanceID,
	})
}

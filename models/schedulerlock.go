package models

import "time"

// SchedulerLock is a distributed lock document used to keep background jobs
// single-flight across instances
type SchedulerLock struct {
	JobName    string    `json:"jobName" bson:"jobName"`
	InstanceID string    `json:"instanceID" bson:"instanceID"`
	AcquiredAt time.Time `json:"acquiredAt" bson:"acquiredAt"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
}

package databases

//go generate: mockery --name ProcessedSessionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carhive/carhive-api/models"
)

const processedSessionName = "processedSessions"

// ProcessedSessionDatabase records checkout sessions whose plan activation
// has already been applied. The collection carries a unique index on
// sessionID, so MarkProcessed on a seen session returns a duplicate-key
// error that callers treat as "already done".
type ProcessedSessionDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.ProcessedSession, error)
	MarkProcessed(ctx context.Context, session models.ProcessedSession) error
}

type processedSessionDatabase struct {
	db DatabaseHelper
}

// NewProcessedSessionDatabase initializes a new instance of processed session database with the provided db connection
func NewProcessedSessionDatabase(db DatabaseHelper) ProcessedSessionDatabase {
	return &processedSessionDatabase{
		db: db,
	}
}

func (p *processedSessionDatabase) FindOne(ctx context.Context, filter interface{}) (*models.ProcessedSession, error) {
	session := &models.ProcessedSession{}
	err := p.db.Collection(processedSessionName).FindOne(ctx, filter).Decode(&session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (p *processedSessionDatabase) MarkProcessed(ctx context.Context, session models.ProcessedSession) error {
	_, err := p.db.Collection(processedSessionName).InsertOne(ctx, session)
	return err
}

// IsDuplicateSession reports whether err is the duplicate-key error raised
// when a session id has already been marked processed
func IsDuplicateSession(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

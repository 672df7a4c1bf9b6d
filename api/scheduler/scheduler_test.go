package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/databases/mocks"
	"github.com/carhive/carhive-api/models"
)

type sentEmail struct {
	toEmail string
	subject string
}

// emailRecorder stands in for the sendgrid client so job tests can assert
// on outbound mail without network access
type emailRecorder struct {
	sent []sentEmail
}

func (r *emailRecorder) send(toEmail, toName, subject, htmlContent, plainText string) error {
	r.sent = append(r.sent, sentEmail{toEmail: toEmail, subject: subject})
	return nil
}

func passthroughTxnRunner() *mocks.TxnRunner {
	txn := &mocks.TxnRunner{}
	txn.On("WithTransaction", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
	return txn
}

func grantedLockCollection() *mocks.CollectionHelper {
	lockColl := &mocks.CollectionHelper{}
	lockColl.On("DeleteOne", mock.Anything, mock.Anything).Return(nil)
	lockColl.On("InsertOne", mock.Anything, mock.Anything).Return("lock-id", nil)
	return lockColl
}

func TestRetireLapsedListingsMovesListingInOneTransaction(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	dbHelper.On("Collection", "schedulerLocks").Return(grantedLockCollection())

	lapsed := models.Vehicle{ID: "veh-1"}
	lapsed.Details.DealerID = "dealer-1"
	lapsed.Details.TokenStatus = models.TokenStatusActive

	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Vehicle)
		*arg = []models.Vehicle{lapsed}
	})
	vehColl := &mocks.CollectionHelper{}
	vehColl.On("Find", mock.Anything, mock.Anything).Return(cursor)
	vehColl.On("DeleteOne", mock.Anything, bson.M{"_id": "veh-1"}).Return(nil)
	dbHelper.On("Collection", "vehicles").Return(vehColl)

	var archived models.Vehicle
	inactiveColl := &mocks.CollectionHelper{}
	inactiveColl.On("InsertOne", mock.Anything, mock.Anything).
		Return("veh-1", nil).
		Run(func(args mock.Arguments) {
			archived = args.Get(1).(models.Vehicle)
		})
	dbHelper.On("Collection", "inactiveVehicles").Return(inactiveColl)

	srDealer := &mocks.SingleResultHelper{}
	srDealer.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Dealer)
		(*arg).ID = "dealer-1"
		(*arg).Details.Email = "dealer@example.com"
		(*arg).Details.CompanyName = "Example Motors"
	})
	dealerColl := &mocks.CollectionHelper{}
	dealerColl.On("FindOne", mock.Anything, bson.M{"_id": "dealer-1"}).Return(srDealer)
	dbHelper.On("Collection", "dealers").Return(dealerColl)

	txn := passthroughTxnRunner()
	rec := &emailRecorder{}
	s := &Scheduler{
		VDB:        databases.NewVehicleDatabase(dbHelper),
		InactiveDB: databases.NewInactiveVehicleDatabase(dbHelper),
		DDB:        databases.NewDealerDatabase(dbHelper),
		UDB:        databases.NewUserDatabase(dbHelper),
		LockDB:     databases.NewSchedulerLockDatabase(dbHelper),
		Txn:        txn,
		instanceID: "test-instance",
		sendEmail:  rec.send,
	}

	s.retireLapsedListings()

	txn.AssertNumberOfCalls(t, "WithTransaction", 1)
	assert.Equal(t, models.TokenStatusExpired, archived.Details.TokenStatus)
	vehColl.AssertCalled(t, "DeleteOne", mock.Anything, bson.M{"_id": "veh-1"})
	assert.Len(t, rec.sent, 1)
	assert.Equal(t, "dealer@example.com", rec.sent[0].toEmail)
}

func TestRetireLapsedListingsAbortsWhenDeleteFails(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	dbHelper.On("Collection", "schedulerLocks").Return(grantedLockCollection())

	lapsed := models.Vehicle{ID: "veh-1"}
	lapsed.Details.DealerID = "dealer-1"

	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Vehicle)
		*arg = []models.Vehicle{lapsed}
	})
	vehColl := &mocks.CollectionHelper{}
	vehColl.On("Find", mock.Anything, mock.Anything).Return(cursor)
	vehColl.On("DeleteOne", mock.Anything, mock.Anything).Return(errors.New("mocked-delete-error"))
	dbHelper.On("Collection", "vehicles").Return(vehColl)

	inactiveColl := &mocks.CollectionHelper{}
	inactiveColl.On("InsertOne", mock.Anything, mock.Anything).Return("veh-1", nil)
	dbHelper.On("Collection", "inactiveVehicles").Return(inactiveColl)

	dealerColl := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "dealers").Return(dealerColl)

	txn := passthroughTxnRunner()
	rec := &emailRecorder{}
	s := &Scheduler{
		VDB:        databases.NewVehicleDatabase(dbHelper),
		InactiveDB: databases.NewInactiveVehicleDatabase(dbHelper),
		DDB:        databases.NewDealerDatabase(dbHelper),
		UDB:        databases.NewUserDatabase(dbHelper),
		LockDB:     databases.NewSchedulerLockDatabase(dbHelper),
		Txn:        txn,
		instanceID: "test-instance",
		sendEmail:  rec.send,
	}

	s.retireLapsedListings()

	// the insert and delete ride one transaction, so the failed delete
	// aborts the archive instead of leaving the listing in both
	// collections
	txn.AssertNumberOfCalls(t, "WithTransaction", 1)
	assert.Empty(t, rec.sent)
	dealerColl.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestSendExpiryRemindersUsesSevenDayWindow(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	dbHelper.On("Collection", "schedulerLocks").Return(grantedLockCollection())

	expiring := models.Dealer{ID: "dealer-1"}
	expiring.Details.Email = "dealer@example.com"
	expiring.Details.CompanyName = "Example Motors"
	expiring.Details.Plan = &models.PlanInfo{
		PlanName: "Traders Silver",
		EndDate:  time.Now().Add(5 * 24 * time.Hour),
	}

	var dealerFilter bson.M
	dealerCursor := &mocks.CursorHelper{}
	dealerCursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Dealer)
		*arg = []models.Dealer{expiring}
	})
	dealerColl := &mocks.CollectionHelper{}
	dealerColl.On("Find", mock.Anything, mock.Anything).Return(dealerCursor).
		Run(func(args mock.Arguments) {
			dealerFilter = args.Get(1).(bson.M)
		})
	dbHelper.On("Collection", "dealers").Return(dealerColl)

	userCursor := &mocks.CursorHelper{}
	userCursor.On("Decode", mock.Anything).Return(nil)
	userColl := &mocks.CollectionHelper{}
	userColl.On("Find", mock.Anything, mock.Anything).Return(userCursor)
	dbHelper.On("Collection", "users").Return(userColl)

	rec := &emailRecorder{}
	s := &Scheduler{
		DDB:        databases.NewDealerDatabase(dbHelper),
		UDB:        databases.NewUserDatabase(dbHelper),
		LockDB:     databases.NewSchedulerLockDatabase(dbHelper),
		instanceID: "test-instance",
		sendEmail:  rec.send,
	}

	s.sendExpiryReminders()

	window := dealerFilter["dealer.plan.endDate"].(bson.M)
	lower := window["$gt"].(time.Time)
	upper := window["$lt"].(time.Time)
	assert.Equal(t, 7*24*time.Hour, upper.Sub(lower))

	assert.Len(t, rec.sent, 1)
	assert.Equal(t, "dealer@example.com", rec.sent[0].toEmail)
	assert.Equal(t, "Your plan is about to expire", rec.sent[0].subject)
}

func TestDaysUntilClampsToOne(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 1, daysUntil(now, now.Add(2*time.Hour)))
	assert.Equal(t, 1, daysUntil(now, now.Add(-time.Hour)))
	assert.Equal(t, 5, daysUntil(now, now.Add(5*24*time.Hour+time.Minute)))
}

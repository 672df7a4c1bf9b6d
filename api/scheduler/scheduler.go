package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/models"
	templates "github.com/carhive/carhive-api/templates/html"
)

// expiryReminderWindow is how far ahead the reminder job looks for plans
// about to lapse
const expiryReminderWindow = 7 * 24 * time.Hour

// Scheduler handles periodic background jobs for the marketplace
type Scheduler struct {
	cron       *cron.Cron
	VDB        databases.VehicleDatabase
	InactiveDB databases.VehicleDatabase
	UDB        databases.UserDatabase
	DDB        databases.DealerDatabase
	LockDB     databases.SchedulerLockDatabase
	Txn        databases.TxnRunner
	instanceID string
	sendEmail  func(toEmail, toName, subject, htmlContent, plainText string) error
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	vDB databases.VehicleDatabase,
	inactiveDB databases.VehicleDatabase,
	uDB databases.UserDatabase,
	dDB databases.DealerDatabase,
	lockDB databases.SchedulerLockDatabase,
	txn databases.TxnRunner,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		VDB:        vDB,
		InactiveDB: inactiveDB,
		UDB:        uDB,
		DDB:        dDB,
		LockDB:     lockDB,
		Txn:        txn,
		instanceID: instanceID,
		sendEmail:  sendGridEmail,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Retire listings on lapsed plans daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.retireLapsedListings)
	if err != nil {
		zap.S().Errorw("failed to register listing retirement job", "error", err)
	}

	// Remind accounts whose plans lapse within 7 days, daily at 2 AM UTC
	_, err = s.cron.AddFunc("0 2 * * *", s.sendExpiryReminders)
	if err != nil {
		zap.S().Errorw("failed to register expiry reminder job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Marketplace scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Marketplace scheduler stopped")
}

// retireLapsedListings moves listings whose plan coverage has ended off
// the marketplace and into the inactive collection
func (s *Scheduler) retireLapsedListings() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (10 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, "retire_lapsed_listings_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for listing retirement job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Listing retirement job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "retire_lapsed_listings_job", s.instanceID)

	now := time.Now()
	zap.S().Infow("Running listing retirement job", "instance", s.instanceID)

	expired, err := s.VDB.Find(ctx, bson.M{
		"vehicle.tokenStatus":   models.TokenStatusActive,
		"vehicle.planExpiresAt": bson.M{"$lt": now},
	})
	if err != nil {
		zap.S().Errorw("failed to find lapsed listings", "error", err)
		return
	}

	retiredByDealer := map[string]int{}
	retired := 0
	for _, vehicle := range expired {
		vehicle.Details.TokenStatus = models.TokenStatusExpired
		vehicle.Details.UpdatedAt = now

		// archive and remove as one transaction so a failed delete never
		// leaves the listing live in both collections
		archived := vehicle
		err := s.Txn.WithTransaction(ctx, func(txCtx context.Context) error {
			if _, err := s.InactiveDB.InsertOne(txCtx, archived); err != nil {
				return err
			}
			return s.VDB.DeleteOne(txCtx, bson.M{"_id": archived.ID})
		})
		if err != nil {
			zap.S().Errorw("failed to retire lapsed listing", "error", err, "vehicleID", vehicle.ID)
			continue
		}
		retiredByDealer[vehicle.Details.DealerID]++
		retired++
	}

	for accountID, count := range retiredByDealer {
		s.sendListingsRetiredEmail(ctx, accountID, count)
	}

	zap.S().Infow("Listing retirement job complete",
		"lapsedFound", len(expired),
		"retired", retired,
	)
}

// sendExpiryReminders emails accounts whose plan ends within the next
// 7 days
func (s *Scheduler) sendExpiryReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "plan_expiry_reminder_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for expiry reminder job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Expiry reminder job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "plan_expiry_reminder_job", s.instanceID)

	now := time.Now()
	zap.S().Infow("Running plan expiry reminder job", "instance", s.instanceID)

	window := bson.M{"$gt": now, "$lt": now.Add(expiryReminderWindow)}
	reminded := 0

	dealers, err := s.DDB.Find(ctx, bson.M{"dealer.plan.endDate": window})
	if err != nil {
		zap.S().Errorw("failed to find dealers near plan expiry", "error", err)
	}
	for _, dealer := range dealers {
		if dealer.Details.Plan == nil {
			continue
		}
		daysLeft := daysUntil(now, dealer.Details.Plan.EndDate)
		html := templates.RenderPlanExpiryReminderEmail(dealer.Details.CompanyName, dealer.Details.Plan.PlanName, daysLeft)
		plain := fmt.Sprintf("Your %s plan expires in %d day(s). Renew to keep your listings visible.", dealer.Details.Plan.PlanName, daysLeft)
		if err := s.sendEmail(dealer.Details.Email, dealer.Details.CompanyName, "Your plan is about to expire", html, plain); err != nil {
			zap.S().Errorw("failed to send expiry reminder", "error", err, "dealerID", dealer.ID)
			continue
		}
		reminded++
	}

	users, err := s.UDB.Find(ctx, bson.M{"user.plan.endDate": window})
	if err != nil {
		zap.S().Errorw("failed to find users near plan expiry", "error", err)
	}
	for _, user := range users {
		if user.Details.Plan == nil {
			continue
		}
		daysLeft := daysUntil(now, user.Details.Plan.EndDate)
		html := templates.RenderPlanExpiryReminderEmail(user.Details.Name, user.Details.Plan.PlanName, daysLeft)
		plain := fmt.Sprintf("Your %s plan expires in %d day(s). Renew to keep your listings visible.", user.Details.Plan.PlanName, daysLeft)
		if err := s.sendEmail(user.Details.Email, user.Details.Name, "Your plan is about to expire", html, plain); err != nil {
			zap.S().Errorw("failed to send expiry reminder", "error", err, "userID", user.ID)
			continue
		}
		reminded++
	}

	zap.S().Infow("Plan expiry reminder job complete", "remindersSent", reminded)
}

// sendListingsRetiredEmail notifies an account that its lapsed listings
// were taken off the marketplace. The account may live in either the
// dealers or the users collection
func (s *Scheduler) sendListingsRetiredEmail(ctx context.Context, accountID string, count int) {
	var email, name, planName string

	if dealer, err := s.DDB.FindOne(ctx, bson.M{"_id": accountID}); err == nil && dealer != nil {
		email, name = dealer.Details.Email, dealer.Details.CompanyName
		if dealer.Details.Plan != nil {
			planName = dealer.Details.Plan.PlanName
		}
	} else if user, err := s.UDB.FindOne(ctx, bson.M{"_id": accountID}); err == nil && user != nil {
		email, name = user.Details.Email, user.Details.Name
		if user.Details.Plan != nil {
			planName = user.Details.Plan.PlanName
		}
	}
	if email == "" {
		return
	}

	html := templates.RenderListingsRetiredEmail(name, planName, count)
	plain := fmt.Sprintf("Your plan has expired and %d of your listing(s) are no longer visible. Renew to restore them.", count)
	if err := s.sendEmail(email, name, "Your listings are no longer visible", html, plain); err != nil {
		zap.S().Errorw("failed to send listings retired email", "error", err, "accountID", accountID)
	}
}

func sendGridEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("CarHive", "no-reply@carhive.com")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}

func daysUntil(now, deadline time.Time) int {
	days := int(deadline.Sub(now).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}

package models

import "time"

// Payment status values recorded on an account after a confirmation attempt.
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
)

// PlanInfo holds an account's current subscription state as stored under the
// user or dealer document in mongo
type PlanInfo struct {
	PlanName          string         `json:"planName" bson:"planName"`
	PlanPrice         float64        `json:"planPrice" bson:"planPrice"`
	StartDate         time.Time      `json:"startDate" bson:"startDate"`
	EndDate           time.Time      `json:"endDate" bson:"endDate"`
	TotalTokens       int            `json:"totalTokens" bson:"totalTokens"`
	UsedTokens        int            `json:"usedTokens" bson:"usedTokens"`
	PurchaseHistory   []PlanPurchase `json:"purchaseHistory" bson:"purchaseHistory"`
	LastPaymentStatus string         `json:"lastPaymentStatus" bson:"lastPaymentStatus"`
	LastPaymentAt     time.Time      `json:"lastPaymentAt" bson:"lastPaymentAt"`
}

// PlanPurchase is a single entry in an account's ordered purchase history
type PlanPurchase struct {
	PlanName     string    `json:"planName" bson:"planName"`
	PurchasedAt  time.Time `json:"purchasedAt" bson:"purchasedAt"`
	Amount       float64   `json:"amount" bson:"amount"`
	SessionID    string    `json:"sessionID" bson:"sessionID"`
	Tokens       int       `json:"tokens" bson:"tokens"`
	ValidityDays int       `json:"validityDays" bson:"validityDays"`
	IsUpgrade    bool      `json:"isUpgrade,omitempty" bson:"isUpgrade,omitempty"`
	IsRenewal    bool      `json:"isRenewal,omitempty" bson:"isRenewal,omitempty"`
	PreviousPlan string    `json:"previousPlan,omitempty" bson:"previousPlan,omitempty"`
}

// ProcessedSession marks a checkout session whose plan activation has been
// applied. The collection carries a unique index on sessionID so a second
// activation attempt surfaces as a duplicate-key insert.
type ProcessedSession struct {
	SessionID   string    `json:"sessionID" bson:"sessionID"`
	AccountID   string    `json:"accountID" bson:"accountID"`
	PlanName    string    `json:"planName" bson:"planName"`
	ProcessedAt time.Time `json:"processedAt" bson:"processedAt"`
}

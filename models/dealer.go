package models

import "time"

// Dealer holds the structure for the dealers collection in mongo
type Dealer struct {
	ID      string        `json:"_id" bson:"_id"`
	Details DealerDetails `json:"dealer" bson:"dealer"`
	Version int32         `json:"__v" bson:"__v"`
}

// DealerDetails holds the structure for the inner dealer structure as
// defined in the dealers collection in mongo. Dealers are provisioned
// separately from plain users but carry the same plan sub-document, which is
// why plan resolution tries dealers first and falls back to users.
type DealerDetails struct {
	CompanyName string    `json:"companyName" bson:"companyName"`
	Email       string    `json:"email" bson:"email"`
	Password    string    `json:"password" bson:"password"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	City        string    `json:"city,omitempty" bson:"city,omitempty"`
	Country     string    `json:"country,omitempty" bson:"country,omitempty"`
	Logo        string    `json:"logo,omitempty" bson:"logo,omitempty"`
	About       string    `json:"about,omitempty" bson:"about,omitempty"`
	Plan        *PlanInfo `json:"plan,omitempty" bson:"plan,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

package models

import "time"

// Vehicle categories accepted by the marketplace.
const (
	CategoryCar     = "car"
	CategoryVan     = "van"
	CategoryTruck   = "truck"
	CategoryUsedCar = "used-car"
)

// Token status values carried on a listing.
const (
	TokenStatusActive  = "active"
	TokenStatusExpired = "expired"
)

// Vehicle holds the structure for the vehicles and inactiveVehicles
// collections in mongo
type Vehicle struct {
	ID      string         `json:"_id" bson:"_id"`
	Details VehicleDetails `json:"vehicle" bson:"vehicle"`
	Version int32          `json:"__v" bson:"__v"`
}

// VehicleDetails holds the structure for the inner vehicle structure as
// defined in the vehicles collection in mongo
type VehicleDetails struct {
	Category           string        `json:"category" bson:"category"`
	Make               string        `json:"make" bson:"make"`
	Model              string        `json:"model" bson:"model"`
	Year               int           `json:"year" bson:"year"`
	Price              float64       `json:"price" bson:"price"`
	MonthlyPrice       float64       `json:"monthlyPrice,omitempty" bson:"monthlyPrice,omitempty"`
	Mileage            int           `json:"mileage" bson:"mileage"`
	MileageUnit        string        `json:"mileageUnit" bson:"mileageUnit"`
	FuelType           string        `json:"fuelType,omitempty" bson:"fuelType,omitempty"`
	Transmission       string        `json:"transmission,omitempty" bson:"transmission,omitempty"`
	BodyType           string        `json:"bodyType,omitempty" bson:"bodyType,omitempty"`
	Color              string        `json:"color" bson:"color"`
	RegistrationNumber string        `json:"registrationNumber,omitempty" bson:"registrationNumber,omitempty"`
	Location           Location      `json:"location" bson:"location"`
	Image              string        `json:"image" bson:"image"`
	Images             []string      `json:"images,omitempty" bson:"images,omitempty"`
	DealerID           string        `json:"dealerID" bson:"dealerID"`
	TokenStatus        string        `json:"tokenStatus" bson:"tokenStatus"`
	PlanExpiresAt      *time.Time    `json:"planExpiresAt,omitempty" bson:"planExpiresAt,omitempty"`
	UpgradeAudit       *UpgradeAudit `json:"upgradeAudit,omitempty" bson:"upgradeAudit,omitempty"`
	CreatedAt          time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Location holds the address portion of a listing. Lat/Lng are pointers so
// listings without coordinates stay distinguishable from (0,0).
type Location struct {
	Address string   `json:"address" bson:"address"`
	City    string   `json:"city" bson:"city"`
	Country string   `json:"country" bson:"country"`
	Lat     *float64 `json:"lat,omitempty" bson:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty" bson:"lng,omitempty"`
}

// UpgradeAudit is embedded into a listing when its owning account changes
// plan, recording the transition that produced the listing's current expiry
type UpgradeAudit struct {
	PreviousPlan string    `json:"previousPlan" bson:"previousPlan"`
	NewPlan      string    `json:"newPlan" bson:"newPlan"`
	NewExpiry    time.Time `json:"newExpiry" bson:"newExpiry"`
	UpgradedAt   time.Time `json:"upgradedAt" bson:"upgradedAt"`
}

// VehicleSummary is the reduced projection of a vehicle used for list and
// grid views, and the unit the search/browse pipeline operates on.
type VehicleSummary struct {
	ID                 string     `json:"_id"`
	Category           string     `json:"category"`
	Make               string     `json:"make"`
	Model              string     `json:"model"`
	Year               int        `json:"year"`
	Price              float64    `json:"price"`
	MonthlyPrice       float64    `json:"monthlyPrice,omitempty"`
	Mileage            int        `json:"mileage"`
	MileageUnit        string     `json:"mileageUnit"`
	FuelType           string     `json:"fuelType,omitempty"`
	Transmission       string     `json:"transmission,omitempty"`
	BodyType           string     `json:"bodyType,omitempty"`
	Color              string     `json:"color"`
	RegistrationNumber string     `json:"registrationNumber,omitempty"`
	Location           Location   `json:"location"`
	Image              string     `json:"image"`
	Images             []string   `json:"images,omitempty"`
	DealerID           string     `json:"dealerID"`
	TokenStatus        string     `json:"tokenStatus"`
	PlanExpiresAt      *time.Time `json:"planExpiresAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Summary flattens a stored vehicle into its list-view projection
func (v Vehicle) Summary() VehicleSummary {
	d := v.Details
	return VehicleSummary{
		ID:                 v.ID,
		Category:           d.Category,
		Make:               d.Make,
		Model:              d.Model,
		Year:               d.Year,
		Price:              d.Price,
		MonthlyPrice:       d.MonthlyPrice,
		Mileage:            d.Mileage,
		MileageUnit:        d.MileageUnit,
		FuelType:           d.FuelType,
		Transmission:       d.Transmission,
		BodyType:           d.BodyType,
		Color:              d.Color,
		RegistrationNumber: d.RegistrationNumber,
		Location:           d.Location,
		Image:              d.Image,
		Images:             d.Images,
		DealerID:           d.DealerID,
		TokenStatus:        d.TokenStatus,
		PlanExpiresAt:      d.PlanExpiresAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

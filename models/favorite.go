package models

import "time"

// Favorite links a user to a saved listing
type Favorite struct {
	ID        string    `json:"_id" bson:"_id"`
	UserID    string    `json:"userID" bson:"userID"`
	VehicleID string    `json:"vehicleID" bson:"vehicleID"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

package model

import "time"

type Device struct {
	ID             int64      `json:"id"`
	SerialNumber   string     `json:"serialNumber"`
	NameTag        string     `json:"name_tag"`
	Model          string     `json:"model"`
	Brand          string     `json:"brand"`
	Category       string     `json:"category"`
	Status         string     `json:"status"`
	Condition      string     `json:"condition"`
	PurchaseDate   *time.Time `json:"purchaseDate,omitempty"`
	PurchaseCost   *float64   `json:"purchaseCost,omitempty"`
	WarrantyExpiry *time.Time `json:"warrantyExpiry,omitempty"`
	SchoolID       *int64     `json:"schoolId,omitempty"`
	AssignedUserID *int64     `json:"assignedUserId,omitempty"`
	Location       string     `json:"location,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	LastSeenAt     *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

package model

import "time"

type School struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Type           string    `json:"type"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	PrincipalName  string    `json:"principalName,omitempty"`
	PrincipalPhone string    `json:"principalPhone,omitempty"`
	PrincipalEmail string    `json:"principalEmail,omitempty"`
	District       string    `json:"district"`
	Sector         string    `json:"sector"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

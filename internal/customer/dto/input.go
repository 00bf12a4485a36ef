package dto

import "time"

type CreateCustomerInput struct {
	Name              string
	Phone             *string
	DefaultAddress    *string
	DefaultFulfillway *string
	Notes             string
}

type UpdateCustomerInput struct {
	ID                string
	Name              *string
	Phone             *string
	DefaultAddress    *string
	DefaultFulfillway *string
	Notes             *string
	IsActive          *bool
}

type AssignTagInput struct {
	CustomerID string
	Tag        string
	Reason     *string
	ExpiresAt  *time.Time
}

type CustomerFilters struct {
	ActiveOnly bool
	Page       int
	PageSize   int
}

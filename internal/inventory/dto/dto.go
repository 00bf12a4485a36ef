package dto

import "time"

type InventoryFilters struct {
	ProductID string
	Page      int
	PageSize  int
}

type AdjustmentFilters struct {
	ProductID string
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

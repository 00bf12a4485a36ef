package dto

import "github.com/rfandrade/creditledger/internal/model"

type ImportMode string

const (
	// ModeReplace clears every table, then bulk-inserts the payload.
	ModeReplace ImportMode = "replace"
	// ModeMerge upserts by primary key and deletes nothing.
	ModeMerge ImportMode = "merge"
)

// File is the backup wire format. Top-level keys are fixed; readers must
// reject files whose schemaVersion exceeds what they support.
type File struct {
	SchemaVersion        int                         `json:"schemaVersion"`
	ExportedAt           int64                       `json:"exportedAt"` // epoch milliseconds
	Customers            []model.Customer            `json:"customers"`
	CustomerTags         []model.CustomerTag         `json:"customerTags"`
	Products             []model.Product             `json:"products"`
	Inventory            []model.Inventory           `json:"inventory"`
	InventoryAdjustments []model.InventoryAdjustment `json:"inventoryAdjustments"`
	Orders               []model.Order               `json:"orders"`
	OrderItems           []model.OrderItem           `json:"orderItems"`
	Payments             []model.Payment             `json:"payments"`
	Fulfillments         []model.Fulfillment         `json:"fulfillments"`
	OrderPolicies        []model.OrderPolicy         `json:"orderPolicies"`
	Settings             *model.Settings             `json:"settings"`
}

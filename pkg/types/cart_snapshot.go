package types

// CartSnapshot is the frozen cart content stored alongside a saved cart.
type CartSnapshot struct {
	TotalItems int               `json:"total_items"`
	Products   []SnapshotProduct `json:"products"`
}

// SnapshotProduct mirrors a cart item at save time.
type SnapshotProduct struct {
	Code       string         `json:"code"`
	Name       *string        `json:"name"`
	Nutriments map[string]any `json:"nutriments"`
}

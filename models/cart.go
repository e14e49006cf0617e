package models

// ResolvedCartItem is a cart line with its product reference resolved
// for display. Product is nil when the catalog entry has been deleted;
// readers must tolerate the dangling reference.
type ResolvedCartItem struct {
	Product  *Product `json:"product"`
	Quantity int64    `json:"quantity"`
}

// ResolvedCart is what GET /cart returns.
type ResolvedCart struct {
	UserID string             `json:"userId"`
	Items  []ResolvedCartItem `json:"items"`
}

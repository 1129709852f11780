package model

// Item is a storable object somewhere on the warehouse floor or in a rack.
type Item struct {
	ID       int     `json:"id"`
	Type     string  `json:"type"`
	Position Point   `json:"position"`
	WeightKg float64 `json:"weight_kg"`
	Size     Size    `json:"size"`
}

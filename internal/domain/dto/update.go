package dto

// UpdateRequest is the optional body of POST /api/update. Leaving MaxPrice
// out keeps the configured ceiling; a present value must be positive.
type UpdateRequest struct {
	MaxPrice *float64 `json:"maxPrice,omitempty" example:"10"`
}

// UpdateResponse acknowledges an update request.
type UpdateResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"update started"`
}

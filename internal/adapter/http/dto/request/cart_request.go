package request

// AddItemRequest does not bind quantity as required so that 0 reaches the
// use case and is reported as INVALID_QUANTITY.
type AddItemRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type ClearCartRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type UpdateCartStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

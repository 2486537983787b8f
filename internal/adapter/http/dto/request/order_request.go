package request

// CheckoutRequest freezes the user's open cart. IdempotencyKey is optional;
// repeating a key returns the order created by its first use.
type CheckoutRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	Email          string `json:"email"`
	IdempotencyKey string `json:"idempotency_key"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventUserLoggedIn           EventType = "user_logged_in"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventSellerApplied          EventType = "seller_applied"
	EventRoleSwitched           EventType = "role_switched"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OTPIssuedPayload carries a one-time code to the delivery channel.
type OTPIssuedPayload struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	Email string `json:"email"`
}

// SellerAppliedPayload payload.
type SellerAppliedPayload struct {
	SellerID     string `json:"seller_id"`
	BusinessName string `json:"business_name"`
}

// RoleSwitchedPayload payload.
type RoleSwitchedPayload struct {
	SellerID     string `json:"seller_id"`
	IsSellerMode bool   `json:"is_seller_mode"`
}

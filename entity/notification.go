package entity

import "encoding/json"

// Notification is the payload forwarded to the configured webhook after a
// terminal payment result. Delivery is best-effort, at-most-once.
type Notification struct {
	Source        string          `json:"source"`
	EventType     string          `json:"eventType"`
	Timestamp     string          `json:"timestamp"`
	Reference     string          `json:"reference,omitempty"`
	ResultCode    string          `json:"resultCode,omitempty"`
	PspReference  string          `json:"pspReference,omitempty"`
	Amount        *Amount         `json:"amount,omitempty"`
	PaymentMethod json.RawMessage `json:"paymentMethod,omitempty"`
}

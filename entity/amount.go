// Package entity defines data models for the Apple Pay relay service.
package entity

// Amount is a monetary value in minor currency units (cents).
type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// IsZero reports whether the amount carries no usable value.
func (a *Amount) IsZero() bool {
	return a == nil || a.Value == 0 || a.Currency == ""
}

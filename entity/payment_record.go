package entity

import "time"

// PaymentRecord is the audit trail entry persisted to the optional Mongo sink
// for every payment submission that reached a terminal result.
type PaymentRecord struct {
	Reference     string    `json:"reference" bson:"reference"`
	ResultCode    string    `json:"result_code" bson:"result_code"`
	PspReference  string    `json:"psp_reference" bson:"psp_reference"`
	RefusalReason string    `json:"refusal_reason,omitempty" bson:"refusal_reason,omitempty"`
	Amount        int64     `json:"amount" bson:"amount"`
	Currency      string    `json:"currency" bson:"currency"`
	Status        string    `json:"status" bson:"status"`
	TimeCreated   time.Time `json:"time_created" bson:"time_created"`
}

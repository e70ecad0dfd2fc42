package entity

import "encoding/json"

// Result codes returned by the checkout payments endpoint.
const (
	ResultAuthorised      = "Authorised"
	ResultRefused         = "Refused"
	ResultError           = "Error"
	ResultPending         = "Pending"
	ResultRedirectShopper = "RedirectShopper"
)

// Client-facing payment statuses.
const (
	StatusSuccess  = "success"
	StatusDeclined = "declined"
)

// PaymentSubmission is the inbound body of POST /api/submit-payment: the
// payment method data captured by the client widget after the user authorizes
// in the payment sheet. Amount and reference are optional.
type PaymentSubmission struct {
	PaymentMethod json.RawMessage `json:"paymentMethod"`
	Amount        *Amount         `json:"amount,omitempty"`
	Reference     string          `json:"reference,omitempty"`
}

// PaymentRequest is the outbound body for the checkout payments endpoint.
type PaymentRequest struct {
	MerchantAccount string          `json:"merchantAccount"`
	Amount          Amount          `json:"amount"`
	Reference       string          `json:"reference"`
	PaymentMethod   json.RawMessage `json:"paymentMethod"`
	ReturnUrl       string          `json:"returnUrl,omitempty"`
	Channel         string          `json:"channel"`
	CountryCode     string          `json:"countryCode"`
}

// PaymentResult is the processor's response to a payment submission.
// Action, when present, is an opaque follow-up instruction (3-D Secure
// redirect and the like) that must reach the client verbatim.
type PaymentResult struct {
	ResultCode    string          `json:"resultCode"`
	PspReference  string          `json:"pspReference,omitempty"`
	RefusalReason string          `json:"refusalReason,omitempty"`
	Action        json.RawMessage `json:"action,omitempty"`
}

// PaymentResponse is the normalized client-facing result.
type PaymentResponse struct {
	Status       string          `json:"status"`
	PspReference string          `json:"pspReference,omitempty"`
	Action       json.RawMessage `json:"action,omitempty"`
}

// Authorised reports whether the result code is the success terminal state.
func (r *PaymentResult) Authorised() bool {
	return r.ResultCode == ResultAuthorised
}

// HasAction reports whether the processor asked for a client-side follow-up.
func (r *PaymentResult) HasAction() bool {
	return len(r.Action) > 0 && string(r.Action) != "null"
}

package entity

// SessionRequest is the inbound body of POST /api/validate-merchant.
// ValidationUrl is supplied by the client-side payment sheet and is forwarded
// to the processor; this service never calls it directly.
type SessionRequest struct {
	ValidationUrl string `json:"validationUrl"`
}

// ApplePaySessionRequest is the outbound body for the checkout applePay/sessions
// endpoint. The field set is fixed: the domain must exactly match the domain
// registered and verified with Apple, and initiative is always "web" with the
// domain as initiative context, or the processor rejects the call.
type ApplePaySessionRequest struct {
	MerchantIdentifier string `json:"merchantIdentifier"`
	DisplayName        string `json:"displayName"`
	DomainName         string `json:"domainName"`
	Initiative         string `json:"initiative"`
	InitiativeContext  string `json:"initiativeContext"`
	ValidationUrl      string `json:"validationUrl"`
}

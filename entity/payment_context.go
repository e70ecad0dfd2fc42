package entity

import "encoding/json"

// PaymentContextRequest is the inbound body of POST /api/payment-context.
// Amount and country code are optional; configured defaults apply.
type PaymentContextRequest struct {
	Amount      *Amount `json:"amount,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`
}

// PaymentMethodsRequest is the outbound body for the checkout paymentMethods endpoint.
type PaymentMethodsRequest struct {
	MerchantAccount string `json:"merchantAccount"`
	CountryCode     string `json:"countryCode"`
	Amount          Amount `json:"amount"`
	Channel         string `json:"channel"`
	ShopperLocale   string `json:"shopperLocale"`
}

// PaymentContext is returned to the client widget: the client-usable key,
// the environment flag, and the processor's payment methods payload unmodified.
type PaymentContext struct {
	ClientKey      string          `json:"clientKey"`
	Environment    string          `json:"environment"`
	PaymentMethods json.RawMessage `json:"paymentMethodsResponse"`
}

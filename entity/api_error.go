package entity

// APIError is the checkout API error body. It may contain account details and
// is only ever logged server-side, never echoed to the client.
type APIError struct {
	Status       int    `json:"status"`
	ErrorCode    string `json:"errorCode"`
	Message      string `json:"message"`
	ErrorType    string `json:"errorType"`
	PspReference string `json:"pspReference"`
}

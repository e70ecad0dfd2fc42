package internal

import "fmt"

// InputError is a client-caused failure detected before any outbound call.
// Its message is safe to return to the caller.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// UpstreamError is a processor-caused failure: non-2xx status or a malformed
// response body. The full detail is for server-side logs only; the client
// receives a generic message chosen by the handler.
type UpstreamError struct {
	Operation string
	Status    int
	Body      []byte
	Err       error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: processor status %d", e.Operation, e.Status)
}

// Detail includes the raw processor body and must never cross the service
// boundary back to the client.
func (e *UpstreamError) Detail() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("%s; body: %s", e.Error(), string(e.Body))
	}
	return e.Error()
}

func inputError(format string, args ...interface{}) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

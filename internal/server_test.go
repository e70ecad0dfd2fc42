package internal_test

import (
	"applepay/config"
	"applepay/internal"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(conf *config.Config) http.Handler {
	relay := internal.NewRelay(conf)
	relay.SetLogger(internal.NewLogger("relay-test", false, nil))

	forwarder := internal.NewForwarder(conf)
	forwarder.SetLogger(internal.NewLogger("forwarder-test", false, nil))
	relay.SetForwarder(forwarder)

	server := internal.NewServer(conf)
	server.SetLogger(internal.NewLogger("server-test", false, nil))
	server.SetRelayService(relay)

	router := httprouter.New()
	server.Register(router)
	return router
}

func post(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestValidateMerchantEndpoint_PassthroughBody(t *testing.T) {
	sessionBody := `{"merchantSessionIdentifier":"abc","signature":"sig","nonce":"n","timestamp":"123"}`
	stub := &processorStub{status: http.StatusOK, response: sessionBody}
	processor := httptest.NewServer(stub.handler(t))
	defer processor.Close()

	handler := newTestServer(newTestConfig(processor.URL))
	recorder := post(t, handler, "/api/validate-merchant", `{"validationUrl":"https://apple-pay-gateway.apple.com/x"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, sessionBody, recorder.Body.String())
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
}

func TestValidateMerchantEndpoint_MissingUrl(t *testing.T) {
	stub := &processorStub{status: http.StatusOK, response: `{}`}
	processor := httptest.NewServer(stub.handler(t))
	defer processor.Close()

	handler := newTestServer(newTestConfig(processor.URL))
	recorder := post(t, handler, "/api/validate-merchant", `{}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.JSONEq(t, `{"error":"validationUrl is required"}`, recorder.Body.String())
	assert.EqualValues(t, 0, stub.callCount(), "no outbound call without validationUrl")
}

func TestValidateMerchantEndpoint_ProcessorFailure(t *testing.T) {
	stub := &processorStub{
		status:   http.StatusForbidden,
		response: `{"status":403,"errorCode":"901","message":"Invalid Merchant Account"}`,
	}
	processor := httptest.NewServer(stub.handler(t))
	defer processor.Close()

	handler := newTestServer(newTestConfig(processor.URL))
	recorder := post(t, handler, "/api/validate-merchant", `{"validationUrl":"https://apple-pay-gateway.apple.com/x"}`)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t, `{"error":"merchant validation failed"}`, recorder.Body.String())
	// the raw processor error body never reaches the client
	assert.NotContains(t, recorder.Body.String(), "Invalid Merchant Account")
}

func TestSubmitPaymentEndpoint_Authorised(t *testing.T) {
	stub := &processorStub{
		status:   http.StatusOK,
		response: `{"resultCode":"Authorised","pspReference":"psp1"}`,
	}
	processor := httptest.NewServer(stub.handler(t))
	defer processor.Close()

	handler := newTestServer(newTestConfig(processor.URL))
	recorder := post(t, handler, "/api/submit-payment",
		`{"paymentMethod":{"type":"applepay","applePayToken":{"paymentData":"opaque"}},"amount":{"value":1000,"currency":"USD"}}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"success","pspReference":"psp1"}`, recorder.Body.String())
}

func TestSubmitPaymentEndpoint_Refused(t *testing.T) {
	stub := &processorStub{status: http.StatusOK, response: `{"resultCode":"Refused"}`}
	processor := httptest.NewServer(stub.handler(t))
	defer processor.Close()

	handler := newTestServer(newTestConfig(processor.URL))
	recorder := post(t, handler, "/api/submit-payment",
		`{"paymentMethod":{"type":"applepay"},"amount":{"value":1000,"currency":"USD"}}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"declined"}`, recorder.Body.String())
}

func TestSubmitPaymentEndpoint_MissingPaymentMethod(t *testing.T) {
	stub := &processorStub{status: http.StatusOK, response: `{}`}
	processor := httptest.NewServer(stub.handler(t))
	defer processor.Close()

	handler := newTestServer(newTestConfig(processor.URL))
	recorder := post(t, handler, "/api/submit-payment", `{"amount":{"value":1000,"currency":"USD"}}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.JSONEq(t, `{"error":"paymentMethod is required"}`, recorder.Body.String())
	assert.EqualValues(t, 0, stub.callCount())
}

func TestSubmitPaymentEndpoint_ForwarderFailureDoesNotChangeResponse(t *testing.T) {
	stub := &processorStub{
		status:   http.StatusOK,
		response: `{"resultCode":"Authorised","pspReference":"psp9"}`,
	}
	processor := httptest.NewServer(stub.handler(t))
	defer processor.Close()

	conf := newTestConfig(processor.URL)
	// unreachable webhook: delivery fails, the primary response is unaffected
	conf.Forwarder.Url = "http://127.0.0.1:1/webhook"
	conf.Forwarder.Timeout = 1
	handler := newTestServer(conf)

	recorder := post(t, handler, "/api/submit-payment",
		`{"paymentMethod":{"type":"applepay"},"amount":{"value":1000,"currency":"USD"}}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"success","pspReference":"psp9"}`, recorder.Body.String())
}

func TestPaymentContextEndpoint(t *testing.T) {
	stub := &processorStub{
		status:   http.StatusOK,
		response: `{"paymentMethods":[{"type":"applepay","name":"Apple Pay"}]}`,
	}
	processor := httptest.NewServer(stub.handler(t))
	defer processor.Close()

	handler := newTestServer(newTestConfig(processor.URL))
	recorder := post(t, handler, "/api/payment-context", `{"countryCode":"US"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{
		"clientKey": "test_client_key",
		"environment": "test",
		"paymentMethodsResponse": {"paymentMethods":[{"type":"applepay","name":"Apple Pay"}]}
	}`, recorder.Body.String())
}

func TestPaymentContextEndpoint_ProcessorFailure(t *testing.T) {
	stub := &processorStub{
		status:   http.StatusUnauthorized,
		response: `{"status":401,"message":"Invalid API key"}`,
	}
	processor := httptest.NewServer(stub.handler(t))
	defer processor.Close()

	handler := newTestServer(newTestConfig(processor.URL))
	recorder := post(t, handler, "/api/payment-context", ``)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t, `{"error":"failed to initialize payment context"}`, recorder.Body.String())
	assert.NotContains(t, recorder.Body.String(), "Invalid API key")
}

func TestDomainAssociationEndpoint(t *testing.T) {
	content := []byte("7B227073704964223A2241SAMPLE-ASSOCIATION-BYTES")
	dir := t.TempDir()
	path := filepath.Join(dir, "apple-developer-merchantid-domain-association")
	require.NoError(t, os.WriteFile(path, content, 0644))

	conf := newTestConfig("http://unused")
	conf.ApplePay.DomainAssociationFile = path
	handler := newTestServer(conf)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/apple-developer-merchantid-domain-association", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, content, recorder.Body.Bytes())
}

func TestDomainAssociationEndpoint_NotConfigured(t *testing.T) {
	handler := newTestServer(newTestConfig("http://unused"))

	req := httptest.NewRequest(http.MethodGet, "/.well-known/apple-developer-merchantid-domain-association", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

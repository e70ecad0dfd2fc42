package internal

import (
	"applepay/config"
	"applepay/entity"
	"applepay/services"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	checkoutTestUrl = "https://checkout-test.adyen.com/v71"
	checkoutLiveUrl = "https://checkout-live.adyen.com/v71"

	channelWeb = "Web"

	processorTimeout = 12 * time.Second
)

// Relay translates the three client-facing operations into checkout API calls
// and normalized responses. Handlers are stateless; configuration is the only
// process-wide state and is read-only after startup.
type Relay struct {
	conf       *config.Config
	database   services.Database
	logger     services.LogHandler
	forwarder  services.Forwarder
	requestUrl string
	httpClient *http.Client
}

// NewRelay creates the processor client with a pooled HTTP transport.
// The checkout base URL follows the configured environment unless an explicit
// override is set (stub endpoints in tests use the override).
func NewRelay(conf *config.Config) *Relay {
	requestUrl := conf.Adyen.RequestUrl
	if requestUrl == "" {
		if conf.Adyen.Environment == "live" {
			requestUrl = checkoutLiveUrl
		} else {
			requestUrl = checkoutTestUrl
		}
	}
	return &Relay{
		conf:       conf,
		requestUrl: requestUrl,
		httpClient: &http.Client{
			Timeout: processorTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DisableKeepAlives:   false,
			},
		},
	}
}

func (r *Relay) SetDatabase(database services.Database) {
	r.database = database
}

func (r *Relay) SetForwarder(forwarder services.Forwarder) {
	r.forwarder = forwarder
}

func (r *Relay) SetLogger(logger services.LogHandler) {
	r.logger = logger
	if r.conf.DisablePayment {
		r.logger.Warn("payment submission disabled")
	}
}

// GetPaymentContext requests the available payment methods from the processor
// and wraps them with the client key and environment flag for the widget.
// This call has no side effects on the processor, so one retry is allowed.
func (r *Relay) GetPaymentContext(ctx context.Context, request *entity.PaymentContextRequest) (*entity.PaymentContext, error) {
	if request == nil {
		request = &entity.PaymentContextRequest{}
	}

	amount := r.resolveAmount(request.Amount, "payment context")
	countryCode := request.CountryCode
	if countryCode == "" {
		countryCode = r.conf.Payment.CountryCode
	}

	outbound := entity.PaymentMethodsRequest{
		MerchantAccount: r.conf.Adyen.MerchantAccount,
		CountryCode:     countryCode,
		Amount:          amount,
		Channel:         channelWeb,
		ShopperLocale:   r.conf.Payment.ShopperLocale,
	}

	body, err := r.post(ctx, "/paymentMethods", &outbound, true)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &UpstreamError{Operation: "payment context", Err: fmt.Errorf("malformed response body")}
	}

	return &entity.PaymentContext{
		ClientKey:      r.conf.Adyen.ClientKey,
		Environment:    r.conf.Adyen.Environment,
		PaymentMethods: body,
	}, nil
}

// ValidateMerchant asks the processor to sign an Apple Pay merchant session
// for the validation URL supplied by the payment sheet. The signed session
// payload is returned verbatim: this service has no means to produce or
// re-sign it, so it must not parse or transform the contents.
// Validation URLs are single-use and short-lived; the call is never retried.
func (r *Relay) ValidateMerchant(ctx context.Context, validationUrl string) (json.RawMessage, error) {
	if validationUrl == "" {
		return nil, inputError("validationUrl is required")
	}
	parsed, err := url.Parse(validationUrl)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, inputError("validationUrl is not a valid URL")
	}
	if r.conf.ApplePay.MerchantIdentifier == "" || r.conf.ApplePay.DomainName == "" || r.conf.ApplePay.DisplayName == "" {
		return nil, &UpstreamError{Operation: "validate merchant", Err: fmt.Errorf("apple pay merchant not configured")}
	}

	outbound := entity.ApplePaySessionRequest{
		MerchantIdentifier: r.conf.ApplePay.MerchantIdentifier,
		DisplayName:        r.conf.ApplePay.DisplayName,
		DomainName:         r.conf.ApplePay.DomainName,
		Initiative:         "web",
		InitiativeContext:  r.conf.ApplePay.DomainName,
		ValidationUrl:      validationUrl,
	}
	r.logger.Info(fmt.Sprintf("[%s] validating merchant for %s", GetRequestID(ctx), r.conf.ApplePay.DomainName))

	body, err := r.post(ctx, "/applePay/sessions", &outbound, false)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &UpstreamError{Operation: "validate merchant", Err: fmt.Errorf("malformed session payload")}
	}
	return body, nil
}

// SubmitPayment relays the captured payment token to the payments endpoint.
// The call is never retried: re-submitting an authorization with the same
// token risks double-charging, so on failure the caller decides whether to
// request a fresh token from the widget. On a terminal result the forwarder
// is dispatched asynchronously after the response is decided.
func (r *Relay) SubmitPayment(ctx context.Context, submission *entity.PaymentSubmission) (*entity.PaymentResponse, error) {
	if submission == nil || len(submission.PaymentMethod) == 0 || string(submission.PaymentMethod) == "null" {
		return nil, inputError("paymentMethod is required")
	}
	if submission.Amount != nil && submission.Amount.Value < 0 {
		return nil, inputError("amount must not be negative")
	}

	amount := r.resolveAmount(submission.Amount, "payment submission")

	reference := submission.Reference
	if reference == "" {
		reference = uuid.NewString()
		r.logger.Debug(fmt.Sprintf("generated reference %s", reference))
	}

	if r.conf.DisablePayment {
		r.logger.Warn(fmt.Sprintf("payment disabled: reference %s declined without request", reference))
		return &entity.PaymentResponse{Status: entity.StatusDeclined}, nil
	}

	outbound := entity.PaymentRequest{
		MerchantAccount: r.conf.Adyen.MerchantAccount,
		Amount:          amount,
		Reference:       reference,
		PaymentMethod:   submission.PaymentMethod,
		ReturnUrl:       r.conf.Payment.ReturnUrl,
		Channel:         channelWeb,
		CountryCode:     r.conf.Payment.CountryCode,
	}
	r.logger.Info(fmt.Sprintf("[%s] submitting payment: reference %s; amount %d %s", GetRequestID(ctx), reference, amount.Value, amount.Currency))

	body, err := r.post(ctx, "/payments", &outbound, false)
	if err != nil {
		return nil, err
	}

	var result entity.PaymentResult
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, &UpstreamError{Operation: "submit payment", Body: body, Err: fmt.Errorf("parse result: %v", err)}
	}
	if result.ResultCode == "" {
		return nil, &UpstreamError{Operation: "submit payment", Body: body, Err: fmt.Errorf("missing result code")}
	}
	r.logger.Info(fmt.Sprintf("[%s] payment result: reference %s; code %s; psp %s", GetRequestID(ctx), reference, result.ResultCode, secret(result.PspReference)))

	response := &entity.PaymentResponse{
		Status:       entity.StatusDeclined,
		PspReference: result.PspReference,
	}
	if result.Authorised() {
		response.Status = entity.StatusSuccess
	}
	if result.HasAction() {
		// hand the follow-up back to the widget untouched
		response.Action = result.Action
		return response, nil
	}

	// terminal result: audit and notify independently of the response
	r.recordResult(reference, amount, &result, response.Status)
	r.dispatchNotification(reference, amount, submission.PaymentMethod, &result)

	return response, nil
}

// resolveAmount substitutes the configured default when the caller omitted
// the amount, logging the substitution so displayed and charged amounts can
// be reconciled.
func (r *Relay) resolveAmount(requested *entity.Amount, operation string) entity.Amount {
	if requested != nil && !requested.IsZero() && requested.Value > 0 {
		return *requested
	}
	amount := entity.Amount{
		Value:    r.conf.Payment.Amount,
		Currency: r.conf.Payment.Currency,
	}
	r.logger.Warn(fmt.Sprintf("%s: no amount supplied, using configured default %d %s", operation, amount.Value, amount.Currency))
	return amount
}

// post issues one outbound call to the checkout API. When retry is set the
// call is repeated once with backoff on network failure or a 5xx status;
// operations with processor-side effects must pass retry=false.
func (r *Relay) post(ctx context.Context, path string, payload interface{}, retry bool) ([]byte, error) {
	requestData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	body, status, err := r.doPost(ctx, path, requestData)
	if retry && ctx.Err() == nil && (err != nil || status >= http.StatusInternalServerError) {
		r.logger.Warn(fmt.Sprintf("retrying %s after failure", path))
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return nil, &UpstreamError{Operation: path, Err: ctx.Err()}
		}
		body, status, err = r.doPost(ctx, path, requestData)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, &UpstreamError{Operation: path, Err: fmt.Errorf("request timeout or cancelled: %w", ctx.Err())}
		}
		return nil, &UpstreamError{Operation: path, Err: err}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		upstream := &UpstreamError{Operation: path, Status: status, Body: body}
		r.logger.Error(upstream.Detail(), fmt.Errorf("processor error"))
		return nil, upstream
	}
	return body, nil
}

func (r *Relay) doPost(ctx context.Context, path string, requestData []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.requestUrl+path, bytes.NewReader(requestData))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", r.conf.Adyen.ApiKey)

	response, err := r.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func(Body io.ReadCloser) {
		if e := Body.Close(); e != nil {
			r.logger.Error("close response body", e)
		}
	}(response.Body)

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, response.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	return body, response.StatusCode, nil
}

func (r *Relay) recordResult(reference string, amount entity.Amount, result *entity.PaymentResult, status string) {
	if r.database == nil {
		return
	}
	record := &entity.PaymentRecord{
		Reference:     reference,
		ResultCode:    result.ResultCode,
		PspReference:  result.PspReference,
		RefusalReason: result.RefusalReason,
		Amount:        amount.Value,
		Currency:      amount.Currency,
		Status:        status,
		TimeCreated:   time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.database.SavePaymentRecord(ctx, record); err != nil {
		r.logger.Error("save payment record", err)
	}
}

// dispatchNotification hands the terminal result to the forwarder in a
// detached goroutine. The primary response is already decided; forwarder
// failure is logged and never raised to the client.
func (r *Relay) dispatchNotification(reference string, amount entity.Amount, paymentMethod json.RawMessage, result *entity.PaymentResult) {
	if r.forwarder == nil {
		return
	}
	notification := &entity.Notification{
		Source:        "applepay-relay",
		EventType:     "payment.result",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Reference:     reference,
		ResultCode:    result.ResultCode,
		PspReference:  result.PspReference,
		Amount:        &amount,
		PaymentMethod: paymentMethod,
	}
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("panic in forwarder dispatch", fmt.Errorf("panic: %v", rec))
			}
		}()
		timeout := time.Duration(r.conf.Forwarder.Timeout) * time.Second
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := r.forwarder.Forward(ctx, notification); err != nil {
			r.logger.Error(fmt.Sprintf("forward notification for reference %s", reference), err)
		}
	}()
}

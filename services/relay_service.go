package services

import (
	"applepay/entity"
	"context"
	"encoding/json"
)

type Relay interface {
	GetPaymentContext(ctx context.Context, request *entity.PaymentContextRequest) (*entity.PaymentContext, error)
	ValidateMerchant(ctx context.Context, validationUrl string) (json.RawMessage, error)
	SubmitPayment(ctx context.Context, submission *entity.PaymentSubmission) (*entity.PaymentResponse, error)
}

package services

import (
	"applepay/entity"
	"context"
)

type Database interface {
	WriteLogMessage(data Data) error

	SavePaymentRecord(ctx context.Context, record *entity.PaymentRecord) error
}

type Data interface {
	DataType() string
}

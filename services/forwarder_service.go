package services

import (
	"applepay/entity"
	"context"
)

type Forwarder interface {
	Forward(ctx context.Context, notification *entity.Notification) error
}

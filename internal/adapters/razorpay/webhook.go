package razorpay

import (
	"encoding/json"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
)

type webhookBody struct {
	Entity  string `json:"entity"`
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity struct {
				ID       string `json:"id"`
				OrderID  string `json:"order_id"`
				Amount   *int64 `json:"amount"`
				Currency string `json:"currency"`
				Status   string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhookEvent decodes a webhook body. Payment fields are required
// only for payment.captured events.
func ParseWebhookEvent(payload []byte) (*domain.WebhookEvent, error) {
	var body webhookBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, domain.NewMalformedWebhookError("webhook body is not valid json", err)
	}
	if body.Event == "" {
		return nil, domain.NewMalformedWebhookError("webhook event type missing", nil)
	}

	event := &domain.WebhookEvent{Type: body.Event}
	if !event.IsCaptured() {
		return event, nil
	}

	if body.Payload.Payment == nil {
		return nil, domain.NewMalformedWebhookError("payload.payment missing", nil)
	}
	entity := body.Payload.Payment.Entity
	switch {
	case entity.OrderID == "":
		return nil, domain.NewMalformedWebhookError("payment entity order_id missing", nil)
	case entity.ID == "":
		return nil, domain.NewMalformedWebhookError("payment entity id missing", nil)
	case entity.Amount == nil:
		return nil, domain.NewMalformedWebhookError("payment entity amount missing", nil)
	}

	event.OrderRef = entity.OrderID
	event.PaymentRef = entity.ID
	event.MinorAmount = *entity.Amount
	return event, nil
}

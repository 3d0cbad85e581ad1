package domain

// WebhookPaymentCaptured is the only gateway event that drives state.
const WebhookPaymentCaptured = "payment.captured"

// WebhookEvent is the gateway-neutral view of a webhook delivery. The
// payment fields are only populated for captured events.
type WebhookEvent struct {
	Type        string
	OrderRef    string
	PaymentRef  string
	MinorAmount int64
}

func (e *WebhookEvent) IsCaptured() bool {
	return e.Type == WebhookPaymentCaptured
}

// OrderResult is what CreateOrder hands back to the client checkout.
type OrderResult struct {
	TransactionRef string
	MinorAmount    int64
	Currency       string
	Reused         bool
}

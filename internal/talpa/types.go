// Package talpa integrates with the Talpa order-experience platform: the
// inbound order webhook, the order-detail fetch it triggers, and the
// availability/price/right-of-purchase resolvers Talpa calls during
// checkout.
package talpa

import "errors"

const (
	EventPaymentPaid = "PAYMENT_PAID"

	metaKeyPermitID = "permitId"
)

var (
	// ErrMissingPermitID fails the whole webhook request; items are never
	// skipped individually.
	ErrMissingPermitID = errors.New("permit_id_missing_from_order_item")
	// ErrUpstream covers any non-2xx response from the order detail API.
	ErrUpstream = errors.New("talpa_upstream_error")
)

type Meta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type OrderItem struct {
	OrderItemID    string `json:"orderItemId"`
	OrderID        string `json:"orderId"`
	SubscriptionID string `json:"subscriptionId"`
	Meta           []Meta `json:"meta"`
}

type OrderDetail struct {
	OrderID string      `json:"orderId"`
	Items   []OrderItem `json:"items"`
}

// OrderEvent is the inbound webhook payload.
type OrderEvent struct {
	OrderID   string `json:"orderId"`
	EventType string `json:"eventType"`
}

// PermitID digs the permit reference out of the item's meta list.
func (i OrderItem) PermitID() (string, bool) {
	for _, meta := range i.Meta {
		if meta.Key == metaKeyPermitID && meta.Value != "" {
			return meta.Value, true
		}
	}
	return "", false
}

type AvailabilityResponse struct {
	ProductID string `json:"productId"`
	Value     bool   `json:"value"`
}

type PriceResponse struct {
	TotalPrice   int64 `json:"totalPrice"`
	MonthlyPrice int64 `json:"monthlyPrice"`
}

type RightOfPurchaseResponse struct {
	RightOfPurchase bool   `json:"rightOfPurchase"`
	Reason          string `json:"reason,omitempty"`
}

package talpa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kaupunki/parking-permits/internal/config"
	"go.uber.org/zap"
)

// OrderFetcher fetches full order detail for a webhook event.
type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID string) (OrderDetail, error)
}

type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	namespace string
	log       *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		baseURL:   cfg.TalpaOrderAPIBaseURL,
		apiKey:    cfg.TalpaAPIKey,
		namespace: cfg.TalpaNamespace,
		log:       log.Named("talpa.client"),
	}
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (OrderDetail, error) {
	endpoint := fmt.Sprintf("%s/order/admin/%s", c.baseURL, url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return OrderDetail{}, err
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("namespace", c.namespace)

	resp, err := c.http.Do(req)
	if err != nil {
		return OrderDetail{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("order detail fetch failed",
			zap.String("order_id", orderID),
			zap.Int("status", resp.StatusCode),
		)
		return OrderDetail{}, fmt.Errorf("%w: status %d for order %s", ErrUpstream, resp.StatusCode, orderID)
	}

	var detail OrderDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return OrderDetail{}, err
	}
	return detail, nil
}

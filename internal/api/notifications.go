package api

import (
	"context"
	"net/http"
)

// Subscription registers this device for push delivery.
type Subscription struct {
	DeviceID   string   `json:"deviceId"`
	Platform   string   `json:"platform"`
	Endpoint   string   `json:"endpoint"`
	Categories []string `json:"categories"`
}

// SubscriptionResult is returned by the backend after registration.
type SubscriptionResult struct {
	ID string `json:"id"`
}

// TestRequest asks the backend to push a test notification to this device.
type TestRequest struct {
	DeviceID string `json:"deviceId"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// Subscribe calls POST /notifications/subscribe.
func (c *Client) Subscribe(ctx context.Context, sub Subscription) (SubscriptionResult, error) {
	var res SubscriptionResult
	err := c.Do(ctx, http.MethodPost, "/notifications/subscribe", sub, &res)
	return res, err
}

// SendTest calls POST /notifications/test.
func (c *Client) SendTest(ctx context.Context, req TestRequest) error {
	return c.Do(ctx, http.MethodPost, "/notifications/test", req, nil)
}

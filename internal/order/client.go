package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client talks to the backend order API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a new order API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  util.GetLogger(),
	}
}

// rawOrderResponse is the backend wire shape of getOrderDetails.
type rawOrderResponse struct {
	Order rawOrder       `json:"order"`
	Items []rawOrderItem `json:"items"`
}

type rawOrder struct {
	OrderID     string          `json:"order_id"`
	CreatedDate string          `json:"created_date"`
	Payment     string          `json:"payment"`
	Total       decimal.Decimal `json:"total"`
	Delivery    decimal.Decimal `json:"delivery"`
	SubTotal    decimal.Decimal `json:"sub_total"`
	OrderStatus string          `json:"order_status"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Address1    string          `json:"address1"`
	Address2    string          `json:"address2"`
	City        string          `json:"city"`
	Email       string          `json:"email"`
	Phone1      string          `json:"phone_1"`
	Phone2      string          `json:"phone_2"`
	Province    string          `json:"province"`
	Country     string          `json:"country"`
}

type rawOrderItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

// GetOrder fetches an order by ID and maps it to the canonical Order
func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "order.Client.GetOrder")
	defer span.End()

	url := fmt.Sprintf("%s/api/customerOrderSave/getOrderDetails/%s", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order fetch returned status %d", resp.StatusCode)
	}

	var raw rawOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	return mapOrder(&raw), nil
}

// UpdateStatus issues the status-update call used by cancellation.
// Any 2xx response counts as success.
func (c *Client) UpdateStatus(ctx context.Context, orderID, status string) error {
	ctx, span := util.StartSpan(ctx, "order.Client.UpdateStatus")
	defer span.End()

	body, err := json.Marshal(map[string]string{"order_status": status})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/customerOrderSave/updateOrderStatus/%s", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status update returned status %d", resp.StatusCode)
	}

	c.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("status", status))
	return nil
}

// mapOrder converts the backend wire shape into the canonical Order.
func mapOrder(raw *rawOrderResponse) *models.Order {
	address := raw.Order.Address1
	if raw.Order.Address2 != "" {
		address += ", " + raw.Order.Address2
	}

	items := make([]models.OrderItem, 0, len(raw.Items))
	for _, item := range raw.Items {
		items = append(items, models.OrderItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			ImageURL:    item.ImageURL,
		})
	}

	return &models.Order{
		ID:            raw.Order.OrderID,
		CreatedAt:     parseCreatedDate(raw.Order.CreatedDate),
		PaymentMethod: raw.Order.Payment,
		Subtotal:      raw.Order.SubTotal,
		DeliveryFee:   raw.Order.Delivery,
		Total:         raw.Order.Total,
		Address: models.ShippingAddress{
			Name:     strings.TrimSpace(raw.Order.FirstName + " " + raw.Order.LastName),
			Address:  address,
			City:     raw.Order.City,
			Province: raw.Order.Province,
			Country:  raw.Order.Country,
			Phone:    raw.Order.Phone1,
			Email:    raw.Order.Email,
		},
		Items:  items,
		Status: MapStatus(raw.Order.OrderStatus),
	}
}

// parseCreatedDate tolerates the date formats the backend has been seen to
// emit. An unparseable date yields the zero time, which reads as outside
// the cancellation window.
func parseCreatedDate(s string) time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

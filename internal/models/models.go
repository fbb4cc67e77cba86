package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product. Immutable once fetched; owned by
// the catalog client and referenced (never copied back) by cart and search.
type Product struct {
	ID          int64           `json:"product_id"`
	Name        string          `json:"product_name"`
	Price       decimal.Decimal `json:"product_price"`
	Discount    decimal.Decimal `json:"discount"`
	Weight      float64         `json:"weight"`
	Amount      float64         `json:"amount"`
	UnitType    string          `json:"unit_type"`
	ImageURL    string          `json:"image_url"`
	ImageURL2   string          `json:"image_url_2,omitempty"`
	ImageURL3   string          `json:"image_url_3,omitempty"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags,omitempty"`
	Sizes       []string        `json:"sizes,omitempty"`
	Variants    []Variant       `json:"variants,omitempty"`
}

// Variant is a color/thumbnail option on a product.
type Variant struct {
	Color     string `json:"color"`
	Thumbnail string `json:"thumbnail"`
}

// EffectivePrice is the price a cart line is charged at: the discount price
// when one is set and undercuts the base price, else the base price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.Discount.IsPositive() && p.Discount.LessThan(p.Price) {
		return p.Discount
	}
	return p.Price
}

// CartLine is one (product, quantity) pair held by the cart.
// Quantity is always >= 1; a line that would reach zero is removed instead.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartLineRef is the persisted form of a cart line: just enough to
// re-hydrate against a fresh catalog fetch.
type CartLineRef struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Status is one of the six canonical order states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusOnTheWay   Status = "on_the_way"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
)

// Order is a customer order fetched from the backend. Read-only except for
// the single local pending -> cancelled transition performed by the
// cancellation workflow.
type Order struct {
	ID            string          `json:"order_id"`
	CreatedAt     time.Time       `json:"created_at"`
	PaymentMethod string          `json:"payment_method"`
	Subtotal      decimal.Decimal `json:"sub_total"`
	DeliveryFee   decimal.Decimal `json:"delivery"`
	Total         decimal.Decimal `json:"total"`
	Address       ShippingAddress `json:"shipping_address"`
	Items         []OrderItem     `json:"items"`
	Status        Status          `json:"status"`
}

// ShippingAddress holds the delivery destination of an order.
type ShippingAddress struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// OrderItem is one line of an ordered item list.
type OrderItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

// Banner is auxiliary display content served alongside the catalog.
type Banner struct {
	ID       int64  `json:"banner_id"`
	ImageURL string `json:"image_url"`
	Link     string `json:"link"`
}

// Comment is a customer testimonial shown on the storefront.
type Comment struct {
	ID      int64  `json:"comment_id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// CheckoutSnapshot captures the full cart state at checkout hand-off time.
type CheckoutSnapshot struct {
	ID        string          `db:"id" json:"id"`
	SessionID string          `db:"session_id" json:"session_id"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	Lines     []SnapshotLine  `json:"lines"`
}

// SnapshotLine is one persisted line of a checkout snapshot.
type SnapshotLine struct {
	SnapshotID  string          `db:"snapshot_id" json:"-"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
}

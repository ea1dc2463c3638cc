package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled,
}

// ParseOrderStatus accepts a status in any letter case.
func ParseOrderStatus(s string) (OrderStatus, error) {
	want := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range OrderStatuses {
		if st == want {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Emoji returns the marker shown next to the status.
func (s OrderStatus) Emoji() string {
	switch s {
	case OrderPending:
		return "⏳"
	case OrderConfirmed:
		return "✅"
	case OrderProcessing:
		return "🔧"
	case OrderShipped:
		return "🚚"
	case OrderDelivered:
		return "🎉"
	case OrderCancelled:
		return "❌"
	}
	return "📦"
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCreditCard   PaymentMethod = "credit_card"
)

// Label renders the method for the order summary ("MOBILE MONEY").
func (p PaymentMethod) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(p), "_", " "))
}

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const (
	// MinQuantity and MaxQuantity bound the quantity of a single order.
	MinQuantity = 1
	MaxQuantity = 100

	// PickupAddress is the delivery address sentinel for collection at the shop.
	PickupAddress = "PICKUP"

	// NoNotes is stored when the customer declines to add notes.
	NoNotes = "No notes"

	// DateLayout is the layout of order and product dates.
	DateLayout = "2006-01-02"
)

// Order is a placed order as stored in the catalog.
type Order struct {
	ID              string        `json:"id" yaml:"id" mapstructure:"id"`
	CustomerPhone   string        `json:"customer_phone" yaml:"customer_phone" mapstructure:"customerPhone"`
	ProductID       string        `json:"product_id" yaml:"product_id" mapstructure:"productId"`
	ProductName     string        `json:"product_name" yaml:"product_name" mapstructure:"productName"`
	MerchantID      string        `json:"merchant_id" yaml:"merchant_id" mapstructure:"-"`
	Quantity        int           `json:"quantity" yaml:"quantity" mapstructure:"quantity"`
	TotalPrice      float64       `json:"total_price" yaml:"total_price" mapstructure:"totalPrice"`
	Currency        string        `json:"currency" yaml:"currency" mapstructure:"currency"`
	Status          OrderStatus   `json:"status" yaml:"status" mapstructure:"status"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty" yaml:"payment_method" mapstructure:"paymentMethod"`
	PaymentStatus   PaymentStatus `json:"payment_status,omitempty" yaml:"payment_status" mapstructure:"paymentStatus"`
	DeliveryAddress string        `json:"delivery_address,omitempty" yaml:"delivery_address" mapstructure:"deliveryAddress"`
	Notes           string        `json:"notes,omitempty" yaml:"notes" mapstructure:"notes"`
	OrderDate       string        `json:"order_date" yaml:"order_date" mapstructure:"orderDate"`
}

// IsPickup reports whether the order is collected at the shop.
func (o Order) IsPickup() bool {
	return o.DeliveryAddress == PickupAddress
}

// NewOrderID derives an order identifier from the clock: "ORD-" and the last 6 digits of epoch milliseconds.
func NewOrderID(now time.Time) string {
	return "ORD-" + lastDigits(now.UnixMilli(), 6)
}

func lastDigits(v int64, n int) string {
	s := strconv.FormatInt(v, 10)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// OrderDraft is an order filled in one step at a time.
// Each setter validates only the field it collects; Complete validates the whole draft.
type OrderDraft struct {
	CustomerPhone   string        `json:"customer_phone" validate:"required"`
	ProductID       string        `json:"product_id" validate:"required"`
	ProductName     string        `json:"product_name" validate:"required"`
	MerchantID      string        `json:"merchant_id" validate:"required"`
	Currency        string        `json:"currency" validate:"required"`
	UnitPrice       float64       `json:"unit_price" validate:"gte=0"`
	Quantity        int           `json:"quantity" validate:"min=1,max=100"`
	TotalPrice      float64       `json:"total_price"`
	Notes           string        `json:"notes,omitempty" validate:"required"`
	DeliveryAddress string        `json:"delivery_address,omitempty" validate:"required"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty" validate:"required,oneof=cash mobile_money bank_transfer credit_card"`
}

// NewOrderDraft starts a draft for one unit of product, sold by merchantID.
func NewOrderDraft(customer string, product Product, merchantID string) *OrderDraft {
	currency := product.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return &OrderDraft{
		CustomerPhone: customer,
		ProductID:     product.ID,
		ProductName:   product.Name,
		MerchantID:    merchantID,
		Currency:      currency,
		UnitPrice:     product.Price,
		Quantity:      MinQuantity,
		TotalPrice:    product.Price,
	}
}

// SetQuantity sets the quantity and recomputes the total from the unit price.
func (d *OrderDraft) SetQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, q)
	}
	d.Quantity = q
	d.TotalPrice = d.UnitPrice * float64(q)
	return nil
}

// SetNotes stores free-text notes. Empty notes are stored as NoNotes.
func (d *OrderDraft) SetNotes(notes string) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = NoNotes
	}
	d.Notes = notes
}

// SetPickup marks the order for collection at the shop.
func (d *OrderDraft) SetPickup() {
	d.DeliveryAddress = PickupAddress
}

// SetDeliveryAddress stores the delivery address.
func (d *OrderDraft) SetDeliveryAddress(addr string) {
	d.DeliveryAddress = strings.TrimSpace(addr)
}

// SetPaymentMethod stores the payment method.
func (d *OrderDraft) SetPaymentMethod(m PaymentMethod) {
	d.PaymentMethod = m
}

// IsPickup reports whether the draft is marked for collection.
func (d *OrderDraft) IsPickup() bool {
	return d.DeliveryAddress == PickupAddress
}

// Complete converts the draft into a pending order.
// It fails with ErrIncompleteDraft if any required field was never collected.
func (d *OrderDraft) Complete(id string, now time.Time) (Order, error) {
	if err := validate.Struct(d); err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrIncompleteDraft, err)
	}
	return Order{
		ID:              id,
		CustomerPhone:   d.CustomerPhone,
		ProductID:       d.ProductID,
		ProductName:     d.ProductName,
		MerchantID:      d.MerchantID,
		Quantity:        d.Quantity,
		TotalPrice:      d.TotalPrice,
		Currency:        d.Currency,
		Status:          OrderPending,
		PaymentMethod:   d.PaymentMethod,
		PaymentStatus:   PaymentPending,
		DeliveryAddress: d.DeliveryAddress,
		Notes:           d.Notes,
		OrderDate:       now.Format(DateLayout),
	}, nil
}

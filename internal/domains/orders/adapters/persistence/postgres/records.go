package postgres

import (
	"time"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

// productRecord is a sellable product together with its on-hand stock.
type productRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;not null"`
	Price     int64     `gorm:"column:price;not null"`
	Stock     int64     `gorm:"column:stock;not null;check:chk_products_stock_non_negative,stock >= 0"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type serviceRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;not null"`
	Price     int64     `gorm:"column:price;not null"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (serviceRecord) TableName() string { return "services" }

// orderRecord maps the order aggregate header; lines live in order_items.
type orderRecord struct {
	ID              int64             `gorm:"primaryKey;column:id"`
	Number          string            `gorm:"column:order_number;size:64;not null;uniqueIndex"`
	CustomerID      int64             `gorm:"column:customer_id;not null;index:idx_orders_customer_created"`
	TotalAmount     int64             `gorm:"column:total_amount;not null"`
	Status          string            `gorm:"column:status;type:varchar(32);not null;index"`
	PaymentMethod   string            `gorm:"column:payment_method;type:varchar(32);not null"`
	ShippingAddress string            `gorm:"column:shipping_address"`
	Notes           string            `gorm:"column:notes"`
	CreatedAt       time.Time         `gorm:"column:created_at;index:idx_orders_customer_created"`
	UpdatedAt       time.Time         `gorm:"column:updated_at"`
	Items           []orderItemRecord `gorm:"foreignKey:OrderID"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        int64  `gorm:"primaryKey;column:id"`
	OrderID   int64  `gorm:"column:order_id;not null;index"`
	Position  int    `gorm:"column:position;not null"`
	Kind      string `gorm:"column:item_kind;type:varchar(16);not null"`
	ItemID    int64  `gorm:"column:item_id;not null"`
	Name      string `gorm:"column:name"`
	Quantity  int32  `gorm:"column:quantity;not null"`
	UnitPrice int64  `gorm:"column:unit_price;not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

type paymentRecord struct {
	ID         int64      `gorm:"primaryKey;column:id"`
	OrderID    int64      `gorm:"column:order_id;not null;index"`
	Amount     int64      `gorm:"column:amount;not null"`
	Method     string     `gorm:"column:method;type:varchar(32);not null"`
	Status     string     `gorm:"column:status;type:varchar(32);not null;index"`
	SettledAt  *time.Time `gorm:"column:settled_at"`
	VerifiedBy string     `gorm:"column:verified_by"`
	Notes      string     `gorm:"column:notes"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (paymentRecord) TableName() string { return "payments" }

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	OrderID     int64     `gorm:"column:order_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

func toOrderRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:              order.ID,
		Number:          order.Number,
		CustomerID:      order.CustomerID,
		TotalAmount:     order.TotalAmount,
		Status:          string(order.Status),
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: order.ShippingAddress,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Items:           make([]orderItemRecord, 0, len(order.Items)),
	}
	for i, item := range order.Items {
		rec.Items = append(rec.Items, orderItemRecord{
			Position:  i,
			Kind:      string(item.Ref.Kind),
			ItemID:    item.Ref.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:              r.ID,
		Number:          r.Number,
		CustomerID:      r.CustomerID,
		TotalAmount:     r.TotalAmount,
		Status:          domain.Status(r.Status),
		PaymentMethod:   domain.PaymentMethod(r.PaymentMethod),
		ShippingAddress: r.ShippingAddress,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Items:           make([]domain.LineItem, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.LineItem{
			Ref:       domain.ItemRef{Kind: domain.ItemKind(item.Kind), ID: item.ItemID},
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return order
}

func toPaymentRecord(payment *domain.Payment) paymentRecord {
	return paymentRecord{
		ID:         payment.ID,
		OrderID:    payment.OrderID,
		Amount:     payment.Amount,
		Method:     string(payment.Method),
		Status:     string(payment.Status),
		SettledAt:  payment.SettledAt,
		VerifiedBy: payment.VerifiedBy,
		Notes:      payment.Notes,
		CreatedAt:  payment.CreatedAt,
		UpdatedAt:  payment.UpdatedAt,
	}
}

func (r paymentRecord) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:         r.ID,
		OrderID:    r.OrderID,
		Amount:     r.Amount,
		Method:     domain.PaymentMethod(r.Method),
		Status:     domain.PaymentStatus(r.Status),
		SettledAt:  r.SettledAt,
		VerifiedBy: r.VerifiedBy,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r productRecord) toPort() *ports.Product {
	return &ports.Product{ID: r.ID, Name: r.Name, Price: r.Price, Stock: r.Stock, Active: r.Active}
}

func (r serviceRecord) toPort() *ports.ServiceOffering {
	return &ports.ServiceOffering{ID: r.ID, Name: r.Name, Price: r.Price, Active: r.Active}
}

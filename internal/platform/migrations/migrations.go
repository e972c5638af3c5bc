package migrations

import (
	"time"

	"gorm.io/gorm"
)

// openPaymentIndex allows one PENDING or PAID attempt per order. GORM index tags cannot carry
// a predicate with commas, so it is created with raw SQL.
const openPaymentIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_one_open
	ON payments (order_id) WHERE status IN ('PENDING', 'PAID')`

// Run applies the fulfillment schema. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&productRecord{},
		&serviceRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&paymentRecord{},
		&idempotencyRecord{},
	); err != nil {
		return err
	}
	return db.Exec(openPaymentIndex).Error
}

// Catalog schema mirrors the orders Postgres adapter. The stock check is the last line of
// defence behind the conditional decrement.
type productRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;not null"`
	Price     int64     `gorm:"column:price;not null;check:chk_products_price_non_negative,price >= 0"`
	Stock     int64     `gorm:"column:stock;not null;check:chk_products_stock_non_negative,stock >= 0"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type serviceRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;not null"`
	Price     int64     `gorm:"column:price;not null;check:chk_services_price_non_negative,price >= 0"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (serviceRecord) TableName() string { return "services" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID              int64             `gorm:"primaryKey;column:id"`
	Number          string            `gorm:"column:order_number;size:64;not null;uniqueIndex"`
	CustomerID      int64             `gorm:"column:customer_id;not null;index:idx_orders_customer_created"`
	TotalAmount     int64             `gorm:"column:total_amount;not null;check:chk_orders_total_non_negative,total_amount >= 0"`
	Status          string            `gorm:"column:status;type:varchar(32);not null;index"`
	PaymentMethod   string            `gorm:"column:payment_method;type:varchar(32);not null"`
	ShippingAddress string            `gorm:"column:shipping_address"`
	Notes           string            `gorm:"column:notes"`
	CreatedAt       time.Time         `gorm:"column:created_at;index:idx_orders_customer_created"`
	UpdatedAt       time.Time         `gorm:"column:updated_at"`
	Items           []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []paymentRecord   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        int64  `gorm:"primaryKey;column:id"`
	OrderID   int64  `gorm:"column:order_id;not null;index"`
	Position  int    `gorm:"column:position;not null"`
	Kind      string `gorm:"column:item_kind;type:varchar(16);not null;check:chk_order_items_kind,item_kind IN ('product','service')"`
	ItemID    int64  `gorm:"column:item_id;not null"`
	Name      string `gorm:"column:name"`
	Quantity  int32  `gorm:"column:quantity;not null;check:chk_order_items_quantity_positive,quantity > 0"`
	UnitPrice int64  `gorm:"column:unit_price;not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Payment schema mirrors the orders Postgres adapter.
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

// Idempotency schema mirrors the placement idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	OrderID     int64     `gorm:"column:order_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

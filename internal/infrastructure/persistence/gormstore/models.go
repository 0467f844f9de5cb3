package gormstore

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserModel GORM用户模型
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

func (UserModel) TableName() string { return "users" }

// UserRoleModel 用户角色绑定，(user_id, role) 唯一
type UserRoleModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_role;not null"`
	Role      string    `gorm:"uniqueIndex:idx_user_role;size:20;not null;comment:admin|customer"`
	CreatedAt time.Time
}

func (UserRoleModel) TableName() string { return "user_roles" }

// CategoryModel 分类（硬删除，删除时商品的分类置空）
type CategoryModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:100;not null"`
	Description string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CategoryModel) TableName() string { return "categories" }

// SupplierModel 供应商
type SupplierModel struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:200;not null"`
	ContactEmail string `gorm:"size:100"`
	Phone        string `gorm:"size:30"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SupplierModel) TableName() string { return "suppliers" }

// ProductModel 商品；stock 只通过 stock = stock + ? 修改
type ProductModel struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"index;size:200;not null;comment:商品名"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:单价"`
	GSTRate      decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null;default:0;comment:税率%"`
	Stock        int             `gorm:"not null;default:0;comment:当前库存"`
	InitialStock int             `gorm:"not null;default:0;comment:初始库存（对账基线）"`
	CategoryID   *uint           `gorm:"index"`
	SupplierID   *uint           `gorm:"index"`
	ReorderPoint int             `gorm:"not null;default:0;comment:补货点"`
	LeadTimeDays int             `gorm:"not null;default:0;comment:供货周期（天）"`
	ImageURL     string          `gorm:"size:500"`
	CreatedAt    time.Time       `gorm:"index"`
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (ProductModel) TableName() string { return "products" }

// InventoryLogModel 库存流水（只追加）
type InventoryLogModel struct {
	ID          uint      `gorm:"primaryKey"`
	ProductID   uint      `gorm:"index:idx_log_product_time;not null"`
	Delta       int       `gorm:"not null"`
	ChangeType  string    `gorm:"index;size:20;not null"`
	BeforeStock int       `gorm:"not null"`
	AfterStock  int       `gorm:"not null"`
	ActorID     *uint     `gorm:"index"`
	Reference   string    `gorm:"index;size:64"`
	Note        string    `gorm:"size:255"`
	CreatedAt   time.Time `gorm:"index:idx_log_product_time"`
}

func (InventoryLogModel) TableName() string { return "inventory_logs" }

// AuditLogModel 审计日志，快照存JSON
type AuditLogModel struct {
	ID        uint           `gorm:"primaryKey"`
	ActorID   *uint          `gorm:"index"`
	Action    string         `gorm:"size:10;not null"`
	Table     string         `gorm:"column:table_name;index:idx_audit_record;size:50;not null"`
	RecordID  uint           `gorm:"index:idx_audit_record;not null"`
	OldValue  datatypes.JSON `gorm:"comment:变更前快照"`
	NewValue  datatypes.JSON `gorm:"comment:变更后快照"`
	CreatedAt time.Time      `gorm:"index"`
}

func (AuditLogModel) TableName() string { return "audit_logs" }

// CartItemModel 购物车条目，(user_id, product_id) 唯一
type CartItemModel struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex:idx_cart_user_product;not null"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_user_product;not null"`
	Quantity  int  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (CartItemModel) TableName() string { return "cart_items" }

// OrderModel 订单
type OrderModel struct {
	ID          uint             `gorm:"primaryKey"`
	OrderNo     string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID      uint             `gorm:"index;not null;comment:买家用户ID"`
	Subtotal    decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Tax         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Total       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Status      string           `gorm:"index;size:20;not null;comment:pending|processing|completed|cancelled"`
	PaymentMode string           `gorm:"size:10;not null"`
	Notes       string           `gorm:"size:500"`
	Lines       []OrderLineModel `gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time        `gorm:"index"`
	UpdatedAt   time.Time
}

func (OrderModel) TableName() string { return "orders" }

// OrderLineModel 订单明细，单价和税率为下单时快照
type OrderLineModel struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     uint            `gorm:"index;not null"`
	ProductID   uint            `gorm:"index;not null"`
	ProductName string          `gorm:"size:200"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GSTRate     decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null"`
}

func (OrderLineModel) TableName() string { return "order_items" }

// PaymentModel 支付记录，每个订单一条
type PaymentModel struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"uniqueIndex;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Mode      string          `gorm:"size:10;not null"`
	Status    string          `gorm:"index;size:20;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PaymentModel) TableName() string { return "payments" }

// ReturnModel 退货申请
type ReturnModel struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     uint   `gorm:"index:idx_return_order_product;not null"`
	UserID      uint   `gorm:"index;not null"`
	ProductID   uint   `gorm:"index:idx_return_order_product;not null"`
	Quantity    int    `gorm:"not null"`
	Reason      string `gorm:"size:500;not null"`
	Status      string `gorm:"index;size:20;not null"`
	RestockedAt *time.Time
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (ReturnModel) TableName() string { return "returns" }

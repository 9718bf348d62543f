package mysql

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/monobook/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数(MaxOpenConns、MaxIdleConns、ConnMaxLifetime)
// 3. SQL日志输出到zerolog,开发环境打印全部SQL,生产环境只打印慢查询
// 4. database.auto_migrate开启时自动迁移表结构
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	gormLog := log.With().Str("component", "gorm").Logger()
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.New(&gormLog, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("mysql connected")

	// 生产环境应使用版本化的迁移脚本
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

// AutoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段,不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&AuthorModel{},
		&BookModel{},
		&OrderModel{},
		&OrderItemModel{},
	)
}

// UserModel GORM用户模型
// domain/user/entity.go是领域实体,不依赖GORM,Repository负责两者之间的转换
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:50;not null;comment:用户名"`
	Email     string    `gorm:"size:100;comment:邮箱(可选)"`
	Password  string    `gorm:"size:255;not null;comment:密码(bcrypt)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// AuthorModel GORM作者模型
type AuthorModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"index;size:100;not null;comment:作者名"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (AuthorModel) TableName() string {
	return "authors"
}

// BookModel GORM图书模型
// 1. 价格使用int64存储最小货币单位
// 2. genre、author_id有索引,支撑列表过滤
// 3. 作者删除时由应用层在同一事务中删除其图书,不依赖数据库外键
type BookModel struct {
	ID              uint      `gorm:"primaryKey"`
	Title           string    `gorm:"index;size:200;not null;comment:书名"`
	AuthorID        uint      `gorm:"index;not null;comment:作者ID"`
	Genre           string    `gorm:"index;size:100;not null;comment:类型"`
	PublicationDate time.Time `gorm:"type:date;not null;comment:出版日期"`
	Price           int64     `gorm:"not null;default:0;comment:单价(最小货币单位)"`
	Quantity        int       `gorm:"not null;default:0;comment:库存数量"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// OrderModel GORM订单模型
// 1. 与OrderItemModel是一对多关系
// 2. ID即网关reference,invoice_id有索引便于对账
// 3. Status使用字符串,原样保存网关状态
type OrderModel struct {
	ID         uint             `gorm:"primaryKey"`
	UserID     uint             `gorm:"index;not null;default:0;comment:下单用户ID(0为匿名)"`
	TotalPrice int64            `gorm:"not null;comment:订单总金额(最小货币单位)"`
	InvoiceID  string           `gorm:"index;size:64;comment:网关发票号"`
	Status     string           `gorm:"index;size:32;not null;default:created;comment:订单状态"`
	Restocked  bool             `gorm:"not null;default:false;comment:是否已回补库存"`
	Items      []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt  time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// Price记录下单时的价格快照
type OrderItemModel struct {
	ID       uint  `gorm:"primaryKey"`
	OrderID  uint  `gorm:"index;not null;comment:订单ID"`
	BookID   uint  `gorm:"index;not null;comment:图书ID"`
	Quantity int   `gorm:"not null;comment:购买数量"`
	Price    int64 `gorm:"not null;comment:下单时单价"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

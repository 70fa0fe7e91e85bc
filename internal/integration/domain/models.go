package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Account is one connected revenue/analytics source, e.g. a Stripe account.
type Account struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Provider  string            `gorm:"not null;index" json:"provider"`
	Label     string            `gorm:"not null" json:"label"`
	Currency  string            `json:"currency,omitempty"`
	Active    bool              `gorm:"not null;default:true" json:"active"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Account) TableName() string { return "integration_accounts" }

// Product is a finer-grained source inside an account; some providers report
// per product, some only per account.
type Product struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"not null;index" json:"account_id"`
	Label     string       `gorm:"not null" json:"label"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Product) TableName() string { return "integration_products" }

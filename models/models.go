package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Product is one row of the price master.
//
// PriceExclTax is in whole currency units; the domain has no fractional
// sub-units.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID           int64     `bun:"id,pk,autoincrement"`
	ItemNo       string    `bun:"item_no,unique,notnull"`
	ProductName  string    `bun:"product_name,notnull"`
	PriceExclTax int64     `bun:"price_excl_tax,notnull,default:0"`
	Unit         string    `bun:"unit"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ProductBarcode maps a scannable code to a product. A product can carry
// several barcodes; a barcode maps to exactly one product.
type ProductBarcode struct {
	bun.BaseModel `bun:"table:product_barcodes,alias:pb"`

	Barcode   string    `bun:"barcode,pk"`
	ProductID int64     `bun:"product_id,notnull"`
	Product   Product   `bun:"rel:belongs-to,join:product_id=id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Session is a time-boxed authorization window granted after the shared
// password check. There are no user identities; the token is the identity.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID        string    `bun:"id,pk"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Setting is a single key/value configuration row.
type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:st"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// SettingSharedPasswordHash is the settings key holding the argon2id hash
// of the shared daily password.
const SettingSharedPasswordHash = "shared_password_hash"

// AuditLog captures immutable change history for catalog and settings
// mutations, keyed by the session token that performed them.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	SessionID  string    `bun:"session_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

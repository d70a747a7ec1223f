package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/tenantdb"
)

// Status is a payment's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Payment is one payment owned by a tenant. Amounts are minor units.
type Payment struct {
	tenantdb.Owned `bson:",inline"`

	ID        uuid.UUID `json:"id" bson:"_id"`
	Reference string    `json:"reference" bson:"reference"`
	Amount    int64     `json:"amount" bson:"amount"`
	Currency  string    `json:"currency" bson:"currency"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

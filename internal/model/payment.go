package model

import (
    "time"

    "github.com/shopspring/decimal"
    "go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods and statuses accepted on the customer intake path.
const (
    PaymentCash   = "Cash"
    PaymentCard   = "Card"
    PaymentOnline = "Online"

    PaymentPaid    = "Paid"
    PaymentPartial = "Partial"
    PaymentPending = "Pending"
)

// Payment belongs to one device and one customer.  RemainingAmount is
// always TotalAmount - AdvanceAmount and EstimateCost falls back to
// TotalAmount when unset.
type Payment struct {
    ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
    DeviceID        primitive.ObjectID `bson:"device_id" json:"device_id"`
    CustomerID      primitive.ObjectID `bson:"customer_id" json:"customer_id"`
    ShopOwnerID     string             `bson:"shop_owner_id,omitempty" json:"shop_owner_id,omitempty"`
    AdvanceAmount   float64            `bson:"advance_amount" json:"advance_amount"`
    TotalAmount     float64            `bson:"total_amount" json:"total_amount"`
    RemainingAmount float64            `bson:"remaining_amount" json:"remaining_amount"`
    EstimateCost    float64            `bson:"estimate_cost" json:"estimate_cost"`
    PaymentMethod   string             `bson:"payment_method" json:"payment_method"`
    PaymentStatus   string             `bson:"payment_status" json:"payment_status"`
    CreatedBy       string             `bson:"created_by" json:"created_by"`
    CreatedOn       time.Time          `bson:"created_on" json:"created_on"`
    UpdatedBy       string             `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
    UpdatedOn       time.Time          `bson:"updated_on" json:"updated_on"`
}

// Derive fills the redundant amounts: a zero EstimateCost becomes
// TotalAmount and RemainingAmount is recomputed in decimal.  Stores call it
// on every write and read.
func (p *Payment) Derive() {
    if decimal.NewFromFloat(p.EstimateCost).IsZero() {
        p.EstimateCost = p.TotalAmount
    }
    p.RemainingAmount = decimal.NewFromFloat(p.TotalAmount).
        Sub(decimal.NewFromFloat(p.AdvanceAmount)).
        InexactFloat64()
}

package model

import (
    "time"

    "go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is a person whose devices are brought in for repair.  Email is
// the natural key: a second intake with the same email reuses the record.
type Customer struct {
    ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
    Name          string             `bson:"name" json:"name"`
    Email         string             `bson:"email" json:"email"`
    ContactNumber string             `bson:"contact_number" json:"contact_number"`
    CreatedBy     string             `bson:"created_by" json:"created_by"`
    CreatedOn     time.Time          `bson:"created_on" json:"created_on"`
    UpdatedBy     string             `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
    UpdatedOn     time.Time          `bson:"updated_on" json:"updated_on"`
}

// CustomerView is a Customer enriched with its latest device and payment.
type CustomerView struct {
    Customer
    Status         string          `json:"status,omitempty"`
    DeviceDetails  *DeviceDetails  `json:"deviceDetails,omitempty"`
    PaymentDetails *PaymentSummary `json:"paymentDetails,omitempty"`
}

// PaymentSummary is the lowercase projection of a Payment shown alongside
// a customer.
type PaymentSummary struct {
    AdvanceAmount float64 `json:"advance_amount"`
    TotalAmount   float64 `json:"total_amount"`
    EstimateCost  float64 `json:"estimate_cost"`
    PaymentMethod string  `json:"payment_method"`
    PaymentStatus string  `json:"payment_status"`
}

package model

import (
    "time"

    "go.mongodb.org/mongo-driver/bson/primitive"
)

type ShopDetails struct {
    ShopName string `bson:"shop_name" json:"shop_name"`
    Contact  string `bson:"contact" json:"contact"`
}

// Invoice is an immutable snapshot of a service request at generation time.
// RemainingBalance is not floored at zero.
type Invoice struct {
    ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
    InvoiceNumber    string             `bson:"invoice_number" json:"invoice_number"`
    ServiceRequestID primitive.ObjectID `bson:"service_request_id" json:"service_request_id"`
    CustomerDetails  CustomerDetails    `bson:"customer_details" json:"customer_details"`
    DeviceDetails    DeviceDetails      `bson:"device_details" json:"device_details"`
    ShopDetails      ShopDetails        `bson:"shop_details" json:"shop_details"`
    TotalAmount      float64            `bson:"total_amount" json:"total_amount"`
    AmountPaid       float64            `bson:"amount_paid" json:"amount_paid"`
    RemainingBalance float64            `bson:"remaining_balance" json:"remaining_balance"`
    PaymentStatus    string             `bson:"payment_status" json:"payment_status"`
    InvoiceDate      time.Time          `bson:"invoice_date" json:"invoice_date"`
    CreatedBy        string             `bson:"created_by" json:"created_by"`
}

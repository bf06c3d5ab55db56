package model

import (
    "time"

    "go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceStatus is the fine-grained workflow state of a repair job.
type ServiceStatus string

const (
    ServicePendingShopAssignment ServiceStatus = "pending_shop_assignment"
    ServiceAssignedToShop        ServiceStatus = "assigned_to_shop"
    ServiceInProgress            ServiceStatus = "in_progress"
    ServiceRepairCompleted       ServiceStatus = "repair_completed"
    ServiceDelivered             ServiceStatus = "delivered"
)

// Status is the coarse summary shown in lists.
type Status string

const (
    StatusPending    Status = "pending"
    StatusInProgress Status = "in_progress"
    StatusCompleted  Status = "completed"
    StatusCancelled  Status = "cancelled"
)

// Payment method and status values accepted inside a service request.
// These differ from the ones used on Payment records.
const (
    RequestPaymentPending = "pending"
    RequestPaymentCash    = "cash"
    RequestPaymentCard    = "card"
    RequestPaymentUPI     = "upi"

    RequestPaymentStatusPending   = "pending"
    RequestPaymentStatusPartial   = "partial"
    RequestPaymentStatusCompleted = "completed"
)

type CustomerDetails struct {
    Name          string `bson:"name" json:"name"`
    Email         string `bson:"email" json:"email"`
    ContactNumber string `bson:"contact_number" json:"contact_number"`
}

type DeviceDetails struct {
    DeviceType       string `bson:"device_type" json:"device_type"`
    DeviceModel      string `bson:"device_model" json:"device_model"`
    IssueDescription string `bson:"issue_description" json:"issue_description"`
    SerialNumber     string `bson:"serial_number" json:"serial_number"`
    ServiceType      string `bson:"service_type" json:"service_type"`
}

type PaymentDetails struct {
    AdvanceAmount float64 `bson:"advance_amount" json:"advance_amount"`
    TotalAmount   float64 `bson:"total_amount" json:"total_amount"`
    PaymentMethod string  `bson:"payment_method" json:"payment_method"`
    PaymentStatus string  `bson:"payment_status" json:"payment_status"`
}

// ServiceRequest is the aggregate root of the repair lifecycle.  The three
// detail groups are copies taken at creation time, not live references.
// CustomerID and DeviceID point at the records created or reused by the
// intake so a failed intake can be rolled back.
type ServiceRequest struct {
    ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
    CustomerDetails CustomerDetails    `bson:"customerDetails" json:"customerDetails"`
    DeviceDetails   DeviceDetails      `bson:"deviceDetails" json:"deviceDetails"`
    PaymentDetails  PaymentDetails     `bson:"paymentDetails" json:"paymentDetails"`
    CustomerID      primitive.ObjectID `bson:"customer_id,omitempty" json:"customer_id,omitempty"`
    DeviceID        primitive.ObjectID `bson:"device_id,omitempty" json:"device_id,omitempty"`
    ShopOwnerID     string             `bson:"shop_owner_id,omitempty" json:"shop_owner_id,omitempty"`
    ServiceStatus   ServiceStatus      `bson:"service_status" json:"service_status"`
    Status          Status             `bson:"status" json:"status"`
    CreatedBy       string             `bson:"created_by" json:"created_by"`
    UpdatedBy       string             `bson:"updated_by" json:"updated_by"`
    CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
    UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// PartyRef is a resolved identity shown in place of a bare id.
type PartyRef struct {
    ID            string `json:"_id"`
    Name          string `json:"name"`
    Email         string `json:"email"`
    ContactNumber string `json:"contact_number,omitempty"`
    ShopName      string `json:"shop_name,omitempty"`
}

// ServiceRequestView is a ServiceRequest with the creator and the assigned
// shop owner resolved to display fields.
type ServiceRequestView struct {
    ServiceRequest
    ShopOwner *PartyRef `json:"shop_owner,omitempty"`
    Creator   *PartyRef `json:"creator,omitempty"`
}

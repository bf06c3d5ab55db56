// Package queue defines message payloads exchanged over the message broker,
// the publisher used by the services and the consumer that delivers them.
package queue

import "time"

// Queue names.  Both are durable and use the default exchange.
const (
    QueueOTPIssued       = "shop_owner.otp_issued"
    QueueServiceRequests = "service_request.events"
)

// Lifecycle event names carried in ServiceRequestEvent.Event.
const (
    EventCreated        = "created"
    EventShopAssigned   = "shop_assigned"
    EventStatusChanged  = "status_changed"
    EventPaymentUpdated = "payment_updated"
    EventDeleted        = "deleted"
    EventInvoiceIssued  = "invoice_generated"
)

// OTPIssuedEvent carries a login code to the out-of-band delivery channel.
type OTPIssuedEvent struct {
    ContactNumber string     `json:"contact_number"`
    OTP           string     `json:"otp"`
    ExpiresAt     *time.Time `json:"expires_at,omitempty"`
    IssuedAt      time.Time  `json:"issued_at"`
}

// ServiceRequestEvent is published after every successful lifecycle mutation.
type ServiceRequestEvent struct {
    RequestID     string    `json:"request_id"`
    Event         string    `json:"event"`
    ServiceStatus string    `json:"service_status"`
    Status        string    `json:"status"`
    ShopOwnerID   string    `json:"shop_owner_id,omitempty"`
    InvoiceNumber string    `json:"invoice_number,omitempty"`
    Actor         string    `json:"actor"`
    At            time.Time `json:"at"`
}

package model

import (
    "time"

    "go.mongodb.org/mongo-driver/bson/primitive"
)

type DeviceStatus string

const (
    DeviceReceived   DeviceStatus = "Received"
    DeviceInProgress DeviceStatus = "In Progress"
    DeviceCompleted  DeviceStatus = "Completed"
    DeviceDelivered  DeviceStatus = "Delivered"
)

// Device is one intake of a customer's device.
type Device struct {
    ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
    CustomerID       primitive.ObjectID `bson:"customer_id" json:"customer_id"`
    DeviceType       string             `bson:"device_type" json:"device_type"`
    DeviceModel      string             `bson:"device_model" json:"device_model"`
    IssueDescription string             `bson:"issue_description" json:"issue_description"`
    SerialNumber     string             `bson:"serial_number" json:"serial_number"`
    ServiceType      string             `bson:"service_type" json:"service_type"`
    Status           DeviceStatus       `bson:"status" json:"status"`
    ShopOwnerID      string             `bson:"shop_owner_id,omitempty" json:"shop_owner_id,omitempty"`
    CreatedBy        string             `bson:"created_by" json:"created_by"`
    CreatedOn        time.Time          `bson:"created_on" json:"created_on"`
    UpdatedBy        string             `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
    UpdatedOn        time.Time          `bson:"updated_on" json:"updated_on"`
}

// Details returns the snapshot embedded in service requests and customer
// views.
func (d Device) Details() DeviceDetails {
    return DeviceDetails{
        DeviceType:       d.DeviceType,
        DeviceModel:      d.DeviceModel,
        IssueDescription: d.IssueDescription,
        SerialNumber:     d.SerialNumber,
        ServiceType:      d.ServiceType,
    }
}

package repository

import (
    "context"
    "time"

    "go.mongodb.org/mongo-driver/bson/primitive"

    "github.com/Subham7008/Quick-Serve/internal/model"
)

// UserRepository persists staff users.
type UserRepository interface {
    Create(ctx context.Context, u *model.User) error
    GetByID(ctx context.Context, id string) (model.User, error)
    GetByUserName(ctx context.Context, userName string) (model.User, error)
    // FindConflict returns the public name of the first unique field already
    // taken (username, email, phone_number) or "" when none is.
    FindConflict(ctx context.Context, userName, email, phone string) (string, error)
    UpdateProfile(ctx context.Context, id string, upd model.UserProfileUpdate) (model.User, error)
}

// ShopOwnerRepository persists shop owners and their pending OTP.
type ShopOwnerRepository interface {
    Create(ctx context.Context, o *model.ShopOwner) error
    GetByID(ctx context.Context, id string) (model.ShopOwner, error)
    GetByContactNumber(ctx context.Context, contact string) (model.ShopOwner, error)
    FindConflict(ctx context.Context, email, contact string) (string, error)
    SetOTP(ctx context.Context, id, otp string, expiresAt *time.Time) error
    // CompleteOTPLogin clears the OTP, marks the owner verified and stores
    // the latest token.
    CompleteOTPLogin(ctx context.Context, id, token string) error
}

// SessionRepository is the registry of issued bearer tokens.
type SessionRepository interface {
    Create(ctx context.Context, s model.Session) error
    Get(ctx context.Context, id string) (model.Session, error)
    Revoke(ctx context.Context, id string) error
    RevokeAllForSubject(ctx context.Context, kind model.SubjectKind, subjectID string) error
}

type CustomerRepository interface {
    Create(ctx context.Context, c *model.Customer) error
    GetByID(ctx context.Context, id primitive.ObjectID) (model.Customer, error)
    GetByEmail(ctx context.Context, email string) (model.Customer, error)
    ListByCreator(ctx context.Context, createdBy string) ([]model.Customer, error)
    Update(ctx context.Context, c model.Customer) error
    Delete(ctx context.Context, id primitive.ObjectID) error
}

type DeviceRepository interface {
    Create(ctx context.Context, d *model.Device) error
    GetByID(ctx context.Context, id primitive.ObjectID) (model.Device, error)
    LatestForCustomer(ctx context.Context, customerID primitive.ObjectID) (model.Device, error)
    Update(ctx context.Context, d model.Device) error
    Delete(ctx context.Context, id primitive.ObjectID) error
    DeleteByCustomer(ctx context.Context, customerID primitive.ObjectID) error
}

type PaymentRepository interface {
    Create(ctx context.Context, p *model.Payment) error
    LatestForCustomer(ctx context.Context, customerID primitive.ObjectID) (model.Payment, error)
    ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]model.Payment, error)
    Update(ctx context.Context, p model.Payment) error
}

type ServiceRequestRepository interface {
    Create(ctx context.Context, sr *model.ServiceRequest) error
    GetByID(ctx context.Context, id primitive.ObjectID) (model.ServiceRequest, error)
    List(ctx context.Context) ([]model.ServiceRequest, error)
    // Patch sets only the fields named in p and returns the stored result.
    // It returns ErrNotFound when no request has that id or when
    // p.ExpectServiceStatus is set and no longer matches.
    Patch(ctx context.Context, id primitive.ObjectID, p ServiceRequestPatch) (model.ServiceRequest, error)
    Delete(ctx context.Context, id primitive.ObjectID) error
}

// ServiceRequestPatch is a targeted update of one service request.  Zero
// values and nil pointers leave the stored field untouched.
type ServiceRequestPatch struct {
    ExpectServiceStatus model.ServiceStatus

    ServiceStatus model.ServiceStatus
    Status        model.Status
    ShopOwnerID   string

    AdvanceAmount *float64
    TotalAmount   *float64
    PaymentMethod *string
    PaymentStatus *string

    UpdatedBy string
}

type InvoiceRepository interface {
    Create(ctx context.Context, inv *model.Invoice) error
    ListByServiceRequest(ctx context.Context, id primitive.ObjectID) ([]model.Invoice, error)
}

// TxRunner runs fn as one unit of work when the backend supports it.
// Transactional reports whether WithinTx actually provides atomicity;
// callers fall back to compensating deletes when it does not.
type TxRunner interface {
    Transactional() bool
    WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores bundles every repository the services need.
type Stores struct {
    Users           UserRepository
    ShopOwners      ShopOwnerRepository
    Sessions        SessionRepository
    Customers       CustomerRepository
    Devices         DeviceRepository
    Payments        PaymentRepository
    ServiceRequests ServiceRequestRepository
    Invoices        InvoiceRepository
    Tx              TxRunner
}

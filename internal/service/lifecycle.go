package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subham7008/Quick-Serve/internal/apperr"
	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/queue"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

// LifecycleService drives a service request from intake to delivery and
// derives invoices from it.
type LifecycleService struct {
	st        repository.Stores
	publisher queue.Publisher
	node      *snowflake.Node
	logger    *slog.Logger
	now       func() time.Time
}

func NewLifecycleService(st repository.Stores, pub queue.Publisher, node *snowflake.Node, logger *slog.Logger) *LifecycleService {
	return &LifecycleService{
		st:        st,
		publisher: pub,
		node:      node,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreateServiceRequestInput struct {
	CustomerDetails model.CustomerDetails `json:"customerDetails"`
	DeviceDetails   model.DeviceDetails   `json:"deviceDetails"`
	PaymentDetails  model.PaymentDetails  `json:"paymentDetails"`
}

// CreatedServiceRequest is the aggregate plus the records the intake
// created or reused.
type CreatedServiceRequest struct {
	ServiceRequest model.ServiceRequest `json:"serviceRequest"`
	Customer       model.Customer       `json:"customer"`
	Device         model.Device         `json:"device"`
}

func (in *CreateServiceRequestInput) normalize() {
	cd, dd, pd := &in.CustomerDetails, &in.DeviceDetails, &in.PaymentDetails
	cd.Name = strings.TrimSpace(cd.Name)
	cd.Email = strings.ToLower(strings.TrimSpace(cd.Email))
	cd.ContactNumber = strings.TrimSpace(cd.ContactNumber)
	dd.DeviceType = strings.TrimSpace(dd.DeviceType)
	dd.DeviceModel = strings.TrimSpace(dd.DeviceModel)
	dd.IssueDescription = strings.TrimSpace(dd.IssueDescription)
	dd.SerialNumber = strings.TrimSpace(dd.SerialNumber)
	dd.ServiceType = strings.TrimSpace(dd.ServiceType)
	if pd.PaymentMethod = strings.TrimSpace(pd.PaymentMethod); pd.PaymentMethod == "" {
		pd.PaymentMethod = model.RequestPaymentPending
	}
	if pd.PaymentStatus = strings.TrimSpace(pd.PaymentStatus); pd.PaymentStatus == "" {
		pd.PaymentStatus = model.RequestPaymentStatusPending
	}
}

func (in CreateServiceRequestInput) validate() error {
	var c apperr.Collector
	checkRequired(&c,
		[2]string{"customerDetails.name", in.CustomerDetails.Name},
		[2]string{"customerDetails.email", in.CustomerDetails.Email},
		[2]string{"customerDetails.contact_number", in.CustomerDetails.ContactNumber},
		[2]string{"deviceDetails.device_type", in.DeviceDetails.DeviceType},
		[2]string{"deviceDetails.device_model", in.DeviceDetails.DeviceModel},
		[2]string{"deviceDetails.issue_description", in.DeviceDetails.IssueDescription},
	)
	checkRequestPayment(&c, &in.PaymentDetails.PaymentMethod, &in.PaymentDetails.PaymentStatus)
	return c.Err("validation failed")
}

func checkRequestPayment(c *apperr.Collector, method, status *string) {
	if method != nil {
		c.Check(oneOf(*method, model.RequestPaymentPending, model.RequestPaymentCash, model.RequestPaymentCard, model.RequestPaymentUPI),
			"paymentDetails.payment_method", "payment_method must be one of pending, cash, card, upi")
	}
	if status != nil {
		c.Check(oneOf(*status, model.RequestPaymentStatusPending, model.RequestPaymentStatusPartial, model.RequestPaymentStatusCompleted),
			"paymentDetails.payment_status", "payment_status must be one of pending, partial, completed")
	}
}

// Create registers a repair job.  The customer is looked up by email and
// reused when present, a new device is always created, and the three
// writes succeed or fail together.
func (s *LifecycleService) Create(ctx context.Context, in CreateServiceRequestInput, actor Identity) (CreatedServiceRequest, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return CreatedServiceRequest{}, err
	}

	var out CreatedServiceRequest
	err := runUnit(ctx, s.st.Tx, s.logger, func(ctx context.Context, rb *rollback) error {
		cust, created, err := s.findOrCreateCustomer(ctx, in.CustomerDetails, actor)
		if err != nil {
			return err
		}
		if created {
			rb.add(func(ctx context.Context) error { return s.st.Customers.Delete(ctx, cust.ID) })
		}

		dev := model.Device{
			CustomerID:       cust.ID,
			DeviceType:       in.DeviceDetails.DeviceType,
			DeviceModel:      in.DeviceDetails.DeviceModel,
			IssueDescription: in.DeviceDetails.IssueDescription,
			SerialNumber:     in.DeviceDetails.SerialNumber,
			ServiceType:      in.DeviceDetails.ServiceType,
			Status:           model.DeviceReceived,
			CreatedBy:        actor.ID,
		}
		if err := s.st.Devices.Create(ctx, &dev); err != nil {
			return err
		}
		rb.add(func(ctx context.Context) error { return s.st.Devices.Delete(ctx, dev.ID) })

		sr := model.ServiceRequest{
			CustomerDetails: model.CustomerDetails{
				Name:          cust.Name,
				Email:         cust.Email,
				ContactNumber: cust.ContactNumber,
			},
			DeviceDetails:  dev.Details(),
			PaymentDetails: in.PaymentDetails,
			CustomerID:     cust.ID,
			DeviceID:       dev.ID,
			ServiceStatus:  model.ServicePendingShopAssignment,
			Status:         model.StatusPending,
			CreatedBy:      actor.ID,
			UpdatedBy:      actor.ID,
		}
		if err := s.st.ServiceRequests.Create(ctx, &sr); err != nil {
			return err
		}
		out = CreatedServiceRequest{ServiceRequest: sr, Customer: cust, Device: dev}
		return nil
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return CreatedServiceRequest{}, err
		}
		return CreatedServiceRequest{}, internal(s.logger, "create service request", err)
	}

	s.emit(ctx, queue.EventCreated, out.ServiceRequest, actor, "")
	return out, nil
}

// findOrCreateCustomer reuses the customer with the given email unchanged.
// created reports whether a new record was written.
func (s *LifecycleService) findOrCreateCustomer(ctx context.Context, cd model.CustomerDetails, actor Identity) (model.Customer, bool, error) {
	cust, err := s.st.Customers.GetByEmail(ctx, cd.Email)
	if err == nil {
		return cust, false, nil
	}
	if !isNotFound(err) {
		return model.Customer{}, false, err
	}
	cust = model.Customer{
		Name:          cd.Name,
		Email:         cd.Email,
		ContactNumber: cd.ContactNumber,
		CreatedBy:     actor.ID,
	}
	if err := s.st.Customers.Create(ctx, &cust); err != nil {
		// lost a race with a concurrent intake for the same email
		if _, dup := repository.IsDuplicate(err); dup {
			existing, gerr := s.st.Customers.GetByEmail(ctx, cd.Email)
			if gerr != nil {
				return model.Customer{}, false, gerr
			}
			return existing, false, nil
		}
		return model.Customer{}, false, err
	}
	return cust, true, nil
}

// List returns every service request regardless of who asks.
func (s *LifecycleService) List(ctx context.Context) ([]model.ServiceRequest, error) {
	srs, err := s.st.ServiceRequests.List(ctx)
	if err != nil {
		return nil, internal(s.logger, "list service requests", err)
	}
	if srs == nil {
		srs = []model.ServiceRequest{}
	}
	return srs, nil
}

// Get returns a request to its creator or its assigned shop owner, with
// both parties resolved to display fields.
func (s *LifecycleService) Get(ctx context.Context, id string, actor Identity) (model.ServiceRequestView, error) {
	sr, err := s.load(ctx, id)
	if err != nil {
		return model.ServiceRequestView{}, err
	}
	if actor.ID != sr.CreatedBy && (sr.ShopOwnerID == "" || actor.ID != sr.ShopOwnerID) {
		return model.ServiceRequestView{}, apperr.Forbidden("you are not allowed to view this service request")
	}

	view := model.ServiceRequestView{ServiceRequest: sr}
	if sr.ShopOwnerID != "" {
		o, err := s.st.ShopOwners.GetByID(ctx, sr.ShopOwnerID)
		switch {
		case err == nil:
			view.ShopOwner = &model.PartyRef{
				ID:            o.ID,
				Name:          o.Name,
				Email:         o.Email,
				ContactNumber: o.ContactNumber,
				ShopName:      o.ShopName,
			}
		case !isNotFound(err):
			return model.ServiceRequestView{}, internal(s.logger, "resolve shop owner", err)
		}
	}
	creator, err := s.resolveCreator(ctx, sr.CreatedBy)
	if err != nil {
		return model.ServiceRequestView{}, internal(s.logger, "resolve creator", err)
	}
	view.Creator = creator
	return view, nil
}

// resolveCreator looks the creator up among users first, then shop owners.
func (s *LifecycleService) resolveCreator(ctx context.Context, id string) (*model.PartyRef, error) {
	if id == "" {
		return nil, nil
	}
	u, err := s.st.Users.GetByID(ctx, id)
	if err == nil {
		return &model.PartyRef{
			ID:            u.ID,
			Name:          strings.TrimSpace(u.FirstName + " " + u.LastName),
			Email:         u.Email,
			ContactNumber: u.PhoneNumber,
		}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	o, err := s.st.ShopOwners.GetByID(ctx, id)
	if err == nil {
		return &model.PartyRef{ID: o.ID, Name: o.Name, Email: o.Email, ContactNumber: o.ContactNumber}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return nil, nil
}

// AssignShop attaches a shop owner.  It is not checked against the
// transition table: assignment always lands in assigned_to_shop with the
// coarse status in_progress.
func (s *LifecycleService) AssignShop(ctx context.Context, id, shopOwnerID string, actor Identity) (model.ServiceRequest, error) {
	shopOwnerID = strings.TrimSpace(shopOwnerID)
	if shopOwnerID == "" {
		return model.ServiceRequest{}, apperr.Validation("validation failed",
			apperr.FieldError{Field: "shop_owner_id", Message: "shop_owner_id is required"})
	}
	sr, err := s.load(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if _, err := s.st.ShopOwners.GetByID(ctx, shopOwnerID); err != nil {
		if isNotFound(err) {
			return model.ServiceRequest{}, apperr.NotFound("shop owner not found")
		}
		return model.ServiceRequest{}, internal(s.logger, "assign shop: owner lookup", err)
	}

	sr, err = s.patch(ctx, sr, repository.ServiceRequestPatch{
		ExpectServiceStatus: sr.ServiceStatus,
		ServiceStatus:       model.ServiceAssignedToShop,
		Status:              model.StatusInProgress,
		ShopOwnerID:         shopOwnerID,
		UpdatedBy:           actor.ID,
	}, model.ServiceAssignedToShop, "assign shop")
	if err != nil {
		return model.ServiceRequest{}, err
	}
	s.emit(ctx, queue.EventShopAssigned, sr, actor, "")
	return sr, nil
}

// UpdateStatus moves the request one step along the workflow.
func (s *LifecycleService) UpdateStatus(ctx context.Context, id string, next model.ServiceStatus, actor Identity) (model.ServiceRequest, error) {
	next = model.ServiceStatus(strings.TrimSpace(string(next)))
	if next == "" {
		return model.ServiceRequest{}, apperr.Validation("validation failed",
			apperr.FieldError{Field: "service_status", Message: "service_status is required"})
	}
	sr, err := s.load(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if !ValidTransition(sr.ServiceStatus, next) {
		return model.ServiceRequest{}, apperr.InvalidTransition(
			"cannot change service_status from " + string(sr.ServiceStatus) + " to " + string(next))
	}

	sr, err = s.patch(ctx, sr, repository.ServiceRequestPatch{
		ExpectServiceStatus: sr.ServiceStatus,
		ServiceStatus:       next,
		Status:              coarseStatusAfter(next, sr.Status),
		UpdatedBy:           actor.ID,
	}, next, "update status")
	if err != nil {
		return model.ServiceRequest{}, err
	}
	s.emit(ctx, queue.EventStatusChanged, sr, actor, "")
	return sr, nil
}

// PaymentPatch holds the payment fields a caller wants to overwrite; nil
// fields are left as they are.
type PaymentPatch struct {
	AdvanceAmount *float64 `json:"advance_amount"`
	TotalAmount   *float64 `json:"total_amount"`
	PaymentMethod *string  `json:"payment_method"`
	PaymentStatus *string  `json:"payment_status"`
}

func (p PaymentPatch) empty() bool {
	return p.AdvanceAmount == nil && p.TotalAmount == nil && p.PaymentMethod == nil && p.PaymentStatus == nil
}

// UpdatePayment applies a partial update to the embedded payment details.
// Enum values are checked the same way as at creation.
func (s *LifecycleService) UpdatePayment(ctx context.Context, id string, patch PaymentPatch, actor Identity) (model.ServiceRequest, error) {
	if patch.empty() {
		return model.ServiceRequest{}, apperr.Validation("at least one payment field must be provided")
	}
	var c apperr.Collector
	checkRequestPayment(&c, patch.PaymentMethod, patch.PaymentStatus)
	if err := c.Err("validation failed"); err != nil {
		return model.ServiceRequest{}, err
	}
	sr, err := s.load(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}

	sr, err = s.patch(ctx, sr, repository.ServiceRequestPatch{
		AdvanceAmount: patch.AdvanceAmount,
		TotalAmount:   patch.TotalAmount,
		PaymentMethod: patch.PaymentMethod,
		PaymentStatus: patch.PaymentStatus,
		UpdatedBy:     actor.ID,
	}, "", "update payment")
	if err != nil {
		return model.ServiceRequest{}, err
	}
	s.emit(ctx, queue.EventPaymentUpdated, sr, actor, "")
	return sr, nil
}

// Delete removes a request.  Only its creator may do so.
func (s *LifecycleService) Delete(ctx context.Context, id string, actor Identity) error {
	sr, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if sr.CreatedBy != actor.ID {
		return apperr.Forbidden("only the creator can delete this service request")
	}
	if err := s.st.ServiceRequests.Delete(ctx, sr.ID); err != nil {
		if isNotFound(err) {
			return apperr.NotFound("service request not found")
		}
		return internal(s.logger, "delete service request", err)
	}
	s.emit(ctx, queue.EventDeleted, sr, actor, "")
	return nil
}

func (s *LifecycleService) load(ctx context.Context, id string) (model.ServiceRequest, error) {
	oid, err := parseObjectID(id, "service request")
	if err != nil {
		return model.ServiceRequest{}, err
	}
	return s.loadByID(ctx, oid)
}

func (s *LifecycleService) loadByID(ctx context.Context, oid primitive.ObjectID) (model.ServiceRequest, error) {
	sr, err := s.st.ServiceRequests.GetByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return model.ServiceRequest{}, apperr.NotFound("service request not found")
		}
		return model.ServiceRequest{}, internal(s.logger, "load service request", err)
	}
	return sr, nil
}

// patch writes p against the request read as sr.  When p carries a status
// guard and the stored status has moved on since that read, the request is
// re-read and the change is refused as a transition from the current status.
func (s *LifecycleService) patch(ctx context.Context, sr model.ServiceRequest, p repository.ServiceRequestPatch, target model.ServiceStatus, op string) (model.ServiceRequest, error) {
	out, err := s.st.ServiceRequests.Patch(ctx, sr.ID, p)
	if err == nil {
		return out, nil
	}
	if !isNotFound(err) {
		return model.ServiceRequest{}, internal(s.logger, op, err)
	}
	if p.ExpectServiceStatus == "" {
		return model.ServiceRequest{}, apperr.NotFound("service request not found")
	}
	cur, err := s.loadByID(ctx, sr.ID)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	return model.ServiceRequest{}, apperr.InvalidTransition(
		"cannot change service_status from " + string(cur.ServiceStatus) + " to " + string(target))
}

func (s *LifecycleService) emit(ctx context.Context, event string, sr model.ServiceRequest, actor Identity, invoice string) {
	publish(ctx, s.publisher, s.logger, queue.QueueServiceRequests, queue.ServiceRequestEvent{
		RequestID:     sr.ID.Hex(),
		Event:         event,
		ServiceStatus: string(sr.ServiceStatus),
		Status:        string(sr.Status),
		ShopOwnerID:   sr.ShopOwnerID,
		InvoiceNumber: invoice,
		Actor:         actor.ID,
		At:            s.now(),
	})
}

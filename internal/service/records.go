package service

import (
	"context"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subham7008/Quick-Serve/internal/apperr"
	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

// RecordsService manages customers, their devices and payments.  Every
// customer is visible only to the identity that created it.
type RecordsService struct {
	st     repository.Stores
	logger *slog.Logger
}

func NewRecordsService(st repository.Stores, logger *slog.Logger) *RecordsService {
	return &RecordsService{st: st, logger: logger}
}

type IntakePayment struct {
	AdvanceAmount float64  `json:"advance_amount"`
	TotalAmount   float64  `json:"total_amount"`
	EstimateCost  *float64 `json:"estimate_cost"`
	PaymentMethod string   `json:"payment_method"`
	PaymentStatus string   `json:"payment_status"`
}

type IntakeInput struct {
	CustomerDetails model.CustomerDetails `json:"customerDetails"`
	DeviceDetails   model.DeviceDetails   `json:"deviceDetails"`
	PaymentDetails  IntakePayment         `json:"paymentDetails"`
}

type IntakeResult struct {
	CustomerID primitive.ObjectID `json:"customer_id"`
	DeviceID   primitive.ObjectID `json:"device_id"`
	PaymentID  primitive.ObjectID `json:"payment_id"`
}

func checkPaymentEnums(c *apperr.Collector, prefix, method, status string) {
	c.Check(oneOf(method, model.PaymentCash, model.PaymentCard, model.PaymentOnline),
		prefix+"payment_method", "payment_method must be one of Cash, Card, Online")
	c.Check(oneOf(status, model.PaymentPaid, model.PaymentPartial, model.PaymentPending),
		prefix+"payment_status", "payment_status must be one of Paid, Partial, Pending")
}

func checkAmounts(c *apperr.Collector, prefix string, total, advance float64) {
	c.Check(total >= 0, prefix+"total_amount", "total_amount must not be negative")
	c.Check(advance >= 0, prefix+"advance_amount", "advance_amount must not be negative")
}

func trimDevice(d *model.DeviceDetails) {
	d.DeviceType = strings.TrimSpace(d.DeviceType)
	d.DeviceModel = strings.TrimSpace(d.DeviceModel)
	d.IssueDescription = strings.TrimSpace(d.IssueDescription)
	d.SerialNumber = strings.TrimSpace(d.SerialNumber)
	d.ServiceType = strings.TrimSpace(d.ServiceType)
}

func checkDevice(c *apperr.Collector, d model.DeviceDetails) {
	checkRequired(c,
		[2]string{"deviceDetails.device_type", d.DeviceType},
		[2]string{"deviceDetails.device_model", d.DeviceModel},
		[2]string{"deviceDetails.issue_description", d.IssueDescription},
	)
}

// Intake records a walk-in: the customer (reused by email, with name and
// contact refreshed), a new device owned by the actor and its payment.
func (s *RecordsService) Intake(ctx context.Context, in IntakeInput, actor Identity) (IntakeResult, error) {
	cd, pd := &in.CustomerDetails, &in.PaymentDetails
	cd.Name = strings.TrimSpace(cd.Name)
	cd.Email = strings.ToLower(strings.TrimSpace(cd.Email))
	cd.ContactNumber = strings.TrimSpace(cd.ContactNumber)
	trimDevice(&in.DeviceDetails)

	var c apperr.Collector
	checkRequired(&c,
		[2]string{"customerDetails.name", cd.Name},
		[2]string{"customerDetails.email", cd.Email},
		[2]string{"customerDetails.contact_number", cd.ContactNumber},
	)
	checkDevice(&c, in.DeviceDetails)
	checkAmounts(&c, "paymentDetails.", pd.TotalAmount, pd.AdvanceAmount)
	checkPaymentEnums(&c, "paymentDetails.", pd.PaymentMethod, pd.PaymentStatus)
	if err := c.Err("validation failed"); err != nil {
		return IntakeResult{}, err
	}

	var out IntakeResult
	err := runUnit(ctx, s.st.Tx, s.logger, func(ctx context.Context, rb *rollback) error {
		cust, err := s.st.Customers.GetByEmail(ctx, cd.Email)
		switch {
		case err == nil:
			prev := cust
			cust.Name = cd.Name
			cust.ContactNumber = cd.ContactNumber
			cust.UpdatedBy = actor.ID
			if err := s.st.Customers.Update(ctx, cust); err != nil {
				return err
			}
			rb.add(func(ctx context.Context) error { return s.st.Customers.Update(ctx, prev) })
		case isNotFound(err):
			cust = model.Customer{
				Name:          cd.Name,
				Email:         cd.Email,
				ContactNumber: cd.ContactNumber,
				CreatedBy:     actor.ID,
			}
			if err := s.st.Customers.Create(ctx, &cust); err != nil {
				return err
			}
			rb.add(func(ctx context.Context) error { return s.st.Customers.Delete(ctx, cust.ID) })
		default:
			return err
		}

		dev := newDevice(cust.ID, in.DeviceDetails, model.DeviceReceived, actor)
		if err := s.st.Devices.Create(ctx, &dev); err != nil {
			return err
		}
		rb.add(func(ctx context.Context) error { return s.st.Devices.Delete(ctx, dev.ID) })

		pay := model.Payment{
			DeviceID:        dev.ID,
			CustomerID:      cust.ID,
			ShopOwnerID:     actor.ID,
			AdvanceAmount:   pd.AdvanceAmount,
			TotalAmount:     pd.TotalAmount,
			RemainingAmount: remaining(pd.TotalAmount, pd.AdvanceAmount),
			EstimateCost:    estimateOrTotal(pd.EstimateCost, pd.TotalAmount),
			PaymentMethod:   pd.PaymentMethod,
			PaymentStatus:   pd.PaymentStatus,
			CreatedBy:       actor.ID,
		}
		if err := s.st.Payments.Create(ctx, &pay); err != nil {
			return err
		}
		out = IntakeResult{CustomerID: cust.ID, DeviceID: dev.ID, PaymentID: pay.ID}
		return nil
	})
	if err != nil {
		if de, ok := repository.IsDuplicate(err); ok {
			return IntakeResult{}, apperr.Conflict(de.Field, "a record with this "+de.Field+" already exists")
		}
		return IntakeResult{}, internal(s.logger, "intake customer", err)
	}
	return out, nil
}

func newDevice(customerID primitive.ObjectID, d model.DeviceDetails, status model.DeviceStatus, actor Identity) model.Device {
	return model.Device{
		CustomerID:       customerID,
		DeviceType:       d.DeviceType,
		DeviceModel:      d.DeviceModel,
		IssueDescription: d.IssueDescription,
		SerialNumber:     d.SerialNumber,
		ServiceType:      d.ServiceType,
		Status:           status,
		ShopOwnerID:      actor.ID,
		CreatedBy:        actor.ID,
	}
}

// List returns the actor's customers with their latest device and payment.
func (s *RecordsService) List(ctx context.Context, actor Identity) ([]model.CustomerView, error) {
	custs, err := s.st.Customers.ListByCreator(ctx, actor.ID)
	if err != nil {
		return nil, internal(s.logger, "list customers", err)
	}
	out := make([]model.CustomerView, 0, len(custs))
	for _, c := range custs {
		v, err := s.view(ctx, c)
		if err != nil {
			return nil, internal(s.logger, "list customers: enrich", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *RecordsService) Get(ctx context.Context, id string, actor Identity) (model.CustomerView, error) {
	c, err := s.owned(ctx, id, actor)
	if err != nil {
		return model.CustomerView{}, err
	}
	v, err := s.view(ctx, c)
	if err != nil {
		return model.CustomerView{}, internal(s.logger, "get customer: enrich", err)
	}
	return v, nil
}

// customerStatus collapses a device status into the customer list status.
func customerStatus(d model.DeviceStatus) string {
	switch d {
	case model.DeviceCompleted:
		return "completed"
	case model.DeviceInProgress:
		return "active"
	default:
		return "pending"
	}
}

// summarize projects a payment into the lowercase vocabulary of the
// customer views.
func summarize(p model.Payment) *model.PaymentSummary {
	method := strings.ToLower(p.PaymentMethod)
	if method == "" {
		method = "pending"
	}
	status := "pending"
	switch p.PaymentStatus {
	case model.PaymentPaid:
		status = "completed"
	case model.PaymentPartial:
		status = "partial"
	}
	est := p.EstimateCost
	return &model.PaymentSummary{
		AdvanceAmount: p.AdvanceAmount,
		TotalAmount:   p.TotalAmount,
		EstimateCost:  estimateOrTotal(&est, p.TotalAmount),
		PaymentMethod: method,
		PaymentStatus: status,
	}
}

func (s *RecordsService) view(ctx context.Context, c model.Customer) (model.CustomerView, error) {
	v := model.CustomerView{Customer: c}
	dev, err := s.st.Devices.LatestForCustomer(ctx, c.ID)
	switch {
	case err == nil:
		d := dev.Details()
		v.DeviceDetails = &d
		v.Status = customerStatus(dev.Status)
	case !isNotFound(err):
		return v, err
	}
	pay, err := s.st.Payments.LatestForCustomer(ctx, c.ID)
	switch {
	case err == nil:
		v.PaymentDetails = summarize(pay)
	case !isNotFound(err):
		return v, err
	}
	return v, nil
}

// owned loads a customer created by actor.  Customers of other identities
// are reported as missing.
func (s *RecordsService) owned(ctx context.Context, id string, actor Identity) (model.Customer, error) {
	oid, err := parseObjectID(id, "customer")
	if err != nil {
		return model.Customer{}, err
	}
	c, err := s.st.Customers.GetByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return model.Customer{}, apperr.NotFound("customer not found")
		}
		return model.Customer{}, internal(s.logger, "load customer", err)
	}
	if c.CreatedBy != actor.ID {
		return model.Customer{}, apperr.NotFound("customer not found")
	}
	return c, nil
}

type PaymentUpdate struct {
	AdvanceAmount float64 `json:"advance_amount"`
	TotalAmount   float64 `json:"total_amount"`
	EstimateCost  float64 `json:"estimate_cost"`
	PaymentMethod string  `json:"payment_method"`
	PaymentStatus string  `json:"payment_status"`
}

type CustomerUpdate struct {
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	ContactNumber  string               `json:"contact_number"`
	Status         string               `json:"status"`
	DeviceDetails  *model.DeviceDetails `json:"deviceDetails"`
	PaymentDetails *PaymentUpdate       `json:"paymentDetails"`
}

type CustomerUpdateResult struct {
	Customer model.Customer `json:"customer"`
	Device   *model.Device  `json:"device"`
	Payment  *model.Payment `json:"payment"`
}

// deviceStatusFor maps the customer list status back to a device status.
func deviceStatusFor(status string) model.DeviceStatus {
	switch status {
	case "completed":
		return model.DeviceCompleted
	case "active":
		return model.DeviceInProgress
	default:
		return model.DeviceReceived
	}
}

// paymentMethodFor maps the lowercase vocabulary onto stored methods.
func paymentMethodFor(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "cash":
		return model.PaymentCash, true
	case "card":
		return model.PaymentCard, true
	case "online", "upi":
		return model.PaymentOnline, true
	}
	return "", false
}

func paymentStatusFor(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "completed":
		return model.PaymentPaid
	case "partial":
		return model.PaymentPartial
	default:
		return model.PaymentPending
	}
}

// Update overwrites the customer's identity fields and, when supplied,
// upserts its latest device and payment.
func (s *RecordsService) Update(ctx context.Context, id string, in CustomerUpdate, actor Identity) (CustomerUpdateResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)

	var c apperr.Collector
	checkRequired(&c,
		[2]string{"name", in.Name},
		[2]string{"email", in.Email},
		[2]string{"contact_number", in.ContactNumber},
	)
	if in.DeviceDetails != nil {
		trimDevice(in.DeviceDetails)
		checkDevice(&c, *in.DeviceDetails)
	}
	method := ""
	if pu := in.PaymentDetails; pu != nil {
		checkAmounts(&c, "paymentDetails.", pu.TotalAmount, pu.AdvanceAmount)
		if strings.TrimSpace(pu.PaymentMethod) != "" {
			m, ok := paymentMethodFor(pu.PaymentMethod)
			c.Check(ok, "paymentDetails.payment_method", "payment_method must be one of cash, card, online, upi")
			method = m
		}
	}
	if err := c.Err("validation failed"); err != nil {
		return CustomerUpdateResult{}, err
	}

	cust, err := s.owned(ctx, id, actor)
	if err != nil {
		return CustomerUpdateResult{}, err
	}

	var out CustomerUpdateResult
	err = runUnit(ctx, s.st.Tx, s.logger, func(ctx context.Context, rb *rollback) error {
		prev := cust
		cust.Name = in.Name
		cust.Email = in.Email
		cust.ContactNumber = in.ContactNumber
		cust.UpdatedBy = actor.ID
		if err := s.st.Customers.Update(ctx, cust); err != nil {
			return err
		}
		rb.add(func(ctx context.Context) error { return s.st.Customers.Update(ctx, prev) })
		out.Customer = cust

		var dev *model.Device
		if in.DeviceDetails != nil {
			d, err := s.upsertDevice(ctx, cust.ID, *in.DeviceDetails, deviceStatusFor(in.Status), actor, rb)
			if err != nil {
				return err
			}
			dev = &d
			out.Device = dev
		}

		if in.PaymentDetails != nil {
			if dev == nil {
				d, err := s.st.Devices.LatestForCustomer(ctx, cust.ID)
				if err != nil && !isNotFound(err) {
					return err
				}
				if err == nil {
					dev = &d
				}
			}
			// a payment always hangs off a device; without one there is nothing to attach it to
			if dev != nil {
				p, err := s.upsertPayment(ctx, cust.ID, dev.ID, *in.PaymentDetails, method, actor, rb)
				if err != nil {
					return err
				}
				out.Payment = p
			}
		}
		return nil
	})
	if err != nil {
		if de, ok := repository.IsDuplicate(err); ok {
			return CustomerUpdateResult{}, apperr.Conflict(de.Field, "a customer with this "+de.Field+" already exists")
		}
		return CustomerUpdateResult{}, internal(s.logger, "update customer", err)
	}
	return out, nil
}

func (s *RecordsService) upsertDevice(ctx context.Context, customerID primitive.ObjectID, d model.DeviceDetails, status model.DeviceStatus, actor Identity, rb *rollback) (model.Device, error) {
	dev, err := s.st.Devices.LatestForCustomer(ctx, customerID)
	if isNotFound(err) {
		dev = newDevice(customerID, d, status, actor)
		if err := s.st.Devices.Create(ctx, &dev); err != nil {
			return model.Device{}, err
		}
		rb.add(func(ctx context.Context) error { return s.st.Devices.Delete(ctx, dev.ID) })
		return dev, nil
	}
	if err != nil {
		return model.Device{}, err
	}
	prev := dev
	dev.DeviceType = d.DeviceType
	dev.DeviceModel = d.DeviceModel
	dev.IssueDescription = d.IssueDescription
	dev.SerialNumber = d.SerialNumber
	dev.ServiceType = d.ServiceType
	dev.Status = status
	dev.UpdatedBy = actor.ID
	if err := s.st.Devices.Update(ctx, dev); err != nil {
		return model.Device{}, err
	}
	rb.add(func(ctx context.Context) error { return s.st.Devices.Update(ctx, prev) })
	return dev, nil
}

// upsertPayment overwrites the latest payment, or creates one when the
// update carries any amount.  method is the already mapped method or "".
func (s *RecordsService) upsertPayment(ctx context.Context, customerID, deviceID primitive.ObjectID, pu PaymentUpdate, method string, actor Identity, rb *rollback) (*model.Payment, error) {
	est := pu.EstimateCost
	pay, err := s.st.Payments.LatestForCustomer(ctx, customerID)
	if err == nil {
		prev := pay
		pay.AdvanceAmount = pu.AdvanceAmount
		pay.TotalAmount = pu.TotalAmount
		pay.EstimateCost = estimateOrTotal(&est, pu.TotalAmount)
		pay.RemainingAmount = remaining(pay.TotalAmount, pay.AdvanceAmount)
		if method != "" {
			pay.PaymentMethod = method
		}
		if strings.TrimSpace(pu.PaymentStatus) != "" {
			pay.PaymentStatus = paymentStatusFor(pu.PaymentStatus)
		}
		pay.UpdatedBy = actor.ID
		if err := s.st.Payments.Update(ctx, pay); err != nil {
			return nil, err
		}
		rb.add(func(ctx context.Context) error { return s.st.Payments.Update(ctx, prev) })
		return &pay, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	if pu.TotalAmount == 0 && pu.AdvanceAmount == 0 && pu.EstimateCost == 0 {
		return nil, nil
	}
	if method == "" {
		method = model.PaymentCash
	}
	pay = model.Payment{
		DeviceID:        deviceID,
		CustomerID:      customerID,
		ShopOwnerID:     actor.ID,
		AdvanceAmount:   pu.AdvanceAmount,
		TotalAmount:     pu.TotalAmount,
		RemainingAmount: remaining(pu.TotalAmount, pu.AdvanceAmount),
		EstimateCost:    estimateOrTotal(&est, pu.TotalAmount),
		PaymentMethod:   method,
		PaymentStatus:   paymentStatusFor(pu.PaymentStatus),
		CreatedBy:       actor.ID,
	}
	if err := s.st.Payments.Create(ctx, &pay); err != nil {
		return nil, err
	}
	return &pay, nil
}

// Delete removes a customer together with its devices.
func (s *RecordsService) Delete(ctx context.Context, id string, actor Identity) error {
	c, err := s.owned(ctx, id, actor)
	if err != nil {
		return err
	}
	err = runUnit(ctx, s.st.Tx, s.logger, func(ctx context.Context, _ *rollback) error {
		if err := s.st.Devices.DeleteByCustomer(ctx, c.ID); err != nil {
			return err
		}
		return s.st.Customers.Delete(ctx, c.ID)
	})
	if err != nil {
		if isNotFound(err) {
			return apperr.NotFound("customer not found")
		}
		return internal(s.logger, "delete customer", err)
	}
	return nil
}

type AddPaymentInput struct {
	DeviceID      string   `json:"device_id"`
	AdvanceAmount float64  `json:"advance_amount"`
	TotalAmount   float64  `json:"total_amount"`
	EstimateCost  *float64 `json:"estimate_cost"`
	PaymentMethod string   `json:"payment_method"`
	PaymentStatus string   `json:"payment_status"`
}

// AddPayment records a payment against a device the actor owns.
func (s *RecordsService) AddPayment(ctx context.Context, in AddPaymentInput, actor Identity) (model.Payment, error) {
	var c apperr.Collector
	c.Check(!blank(in.DeviceID), "device_id", "device_id is required")
	checkAmounts(&c, "", in.TotalAmount, in.AdvanceAmount)
	checkPaymentEnums(&c, "", in.PaymentMethod, in.PaymentStatus)
	if err := c.Err("validation failed"); err != nil {
		return model.Payment{}, err
	}
	oid, err := parseObjectID(in.DeviceID, "device")
	if err != nil {
		return model.Payment{}, err
	}
	dev, err := s.st.Devices.GetByID(ctx, oid)
	if err != nil && !isNotFound(err) {
		return model.Payment{}, internal(s.logger, "add payment: device lookup", err)
	}
	if err != nil || dev.ShopOwnerID != actor.ID {
		return model.Payment{}, apperr.NotFound("device not found or not authorized")
	}

	pay := model.Payment{
		DeviceID:        dev.ID,
		CustomerID:      dev.CustomerID,
		ShopOwnerID:     actor.ID,
		AdvanceAmount:   in.AdvanceAmount,
		TotalAmount:     in.TotalAmount,
		RemainingAmount: remaining(in.TotalAmount, in.AdvanceAmount),
		EstimateCost:    estimateOrTotal(in.EstimateCost, in.TotalAmount),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   in.PaymentStatus,
		CreatedBy:       actor.ID,
	}
	if err := s.st.Payments.Create(ctx, &pay); err != nil {
		return model.Payment{}, internal(s.logger, "add payment", err)
	}
	return pay, nil
}

// PaymentsByCustomer lists a customer's payments, filling in estimate_cost
// for records written before it existed.
func (s *RecordsService) PaymentsByCustomer(ctx context.Context, customerID string, actor Identity) ([]model.Payment, error) {
	c, err := s.owned(ctx, customerID, actor)
	if err != nil {
		return nil, err
	}
	pays, err := s.st.Payments.ListByCustomer(ctx, c.ID)
	if err != nil {
		return nil, internal(s.logger, "list payments", err)
	}
	for i := range pays {
		est := pays[i].EstimateCost
		pays[i].EstimateCost = estimateOrTotal(&est, pays[i].TotalAmount)
	}
	if pays == nil {
		pays = []model.Payment{}
	}
	return pays, nil
}

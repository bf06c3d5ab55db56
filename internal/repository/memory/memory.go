// Package memory is an in-process implementation of every repository.  It
// enforces the same unique constraints as the MySQL and Mongo backends and
// is used with STORE_DRIVER=memory and by the service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

type db struct {
	mu              sync.RWMutex
	users           map[string]model.User
	shopOwners      map[string]model.ShopOwner
	sessions        map[string]model.Session
	customers       map[primitive.ObjectID]model.Customer
	devices         map[primitive.ObjectID]model.Device
	payments        map[primitive.ObjectID]model.Payment
	serviceRequests map[primitive.ObjectID]model.ServiceRequest
	invoices        map[primitive.ObjectID]model.Invoice
	seq             int64
}

// New returns a fresh, empty set of repositories.
func New() repository.Stores {
	d := &db{
		users:           map[string]model.User{},
		shopOwners:      map[string]model.ShopOwner{},
		sessions:        map[string]model.Session{},
		customers:       map[primitive.ObjectID]model.Customer{},
		devices:         map[primitive.ObjectID]model.Device{},
		payments:        map[primitive.ObjectID]model.Payment{},
		serviceRequests: map[primitive.ObjectID]model.ServiceRequest{},
		invoices:        map[primitive.ObjectID]model.Invoice{},
	}
	return repository.Stores{
		Users:           &userRepo{d},
		ShopOwners:      &shopOwnerRepo{d},
		Sessions:        &sessionRepo{d},
		Customers:       &customerRepo{d},
		Devices:         &deviceRepo{d},
		Payments:        &paymentRepo{d},
		ServiceRequests: &serviceRequestRepo{d},
		Invoices:        &invoiceRepo{d},
		Tx:              txRunner{},
	}
}

// now returns a strictly increasing timestamp so "latest" lookups are
// deterministic even within one clock tick.
func (d *db) now() time.Time {
	d.seq++
	return time.Now().UTC().Add(time.Duration(d.seq))
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

type txRunner struct{}

func (txRunner) Transactional() bool { return false }

func (txRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---- users ----

type userRepo struct{ d *db }

func (r *userRepo) Create(_ context.Context, u *model.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	u.Email = normalizeEmail(u.Email)
	for _, e := range r.d.users {
		if field := userClash(e, u.UserName, u.Email, u.PhoneNumber); field != "" {
			return &repository.DuplicateError{Field: field}
		}
	}
	now := r.d.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.d.users[u.ID] = *u
	return nil
}

func userClash(e model.User, userName, email, phone string) string {
	switch {
	case e.UserName == userName:
		return "username"
	case e.Email == email:
		return "email"
	case e.PhoneNumber == phone:
		return "phone_number"
	}
	return ""
}

func (r *userRepo) GetByID(_ context.Context, id string) (model.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	u, ok := r.d.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByUserName(_ context.Context, userName string) (model.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, u := range r.d.users {
		if u.UserName == userName {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *userRepo) FindConflict(_ context.Context, userName, email, phone string) (string, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	email = normalizeEmail(email)
	for _, e := range r.d.users {
		if field := userClash(e, userName, email, phone); field != "" {
			return field, nil
		}
	}
	return "", nil
}

func (r *userRepo) UpdateProfile(_ context.Context, id string, upd model.UserProfileUpdate) (model.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	u, ok := r.d.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if upd.PhoneNumber != nil {
		for _, e := range r.d.users {
			if e.ID != id && e.PhoneNumber == *upd.PhoneNumber {
				return model.User{}, &repository.DuplicateError{Field: "phone_number"}
			}
		}
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.FirstName, upd.FirstName)
	set(&u.LastName, upd.LastName)
	set(&u.BusinessName, upd.BusinessName)
	set(&u.PhoneNumber, upd.PhoneNumber)
	set(&u.BusinessAddress, upd.BusinessAddress)
	set(&u.BusinessPhone, upd.BusinessPhone)
	set(&u.BusinessEmail, upd.BusinessEmail)
	u.UpdatedAt = r.d.now()
	r.d.users[id] = u
	return u, nil
}

// ---- shop owners ----

type shopOwnerRepo struct{ d *db }

func (r *shopOwnerRepo) Create(_ context.Context, o *model.ShopOwner) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	o.Email = normalizeEmail(o.Email)
	for _, e := range r.d.shopOwners {
		if e.Email == o.Email {
			return &repository.DuplicateError{Field: "email"}
		}
		if e.ContactNumber == o.ContactNumber {
			return &repository.DuplicateError{Field: "contact_number"}
		}
	}
	now := r.d.now()
	o.CreatedAt, o.UpdatedAt = now, now
	r.d.shopOwners[o.ID] = *o
	return nil
}

func (r *shopOwnerRepo) GetByID(_ context.Context, id string) (model.ShopOwner, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	o, ok := r.d.shopOwners[id]
	if !ok {
		return model.ShopOwner{}, repository.ErrNotFound
	}
	return o, nil
}

func (r *shopOwnerRepo) GetByContactNumber(_ context.Context, contact string) (model.ShopOwner, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, o := range r.d.shopOwners {
		if o.ContactNumber == contact {
			return o, nil
		}
	}
	return model.ShopOwner{}, repository.ErrNotFound
}

func (r *shopOwnerRepo) FindConflict(_ context.Context, email, contact string) (string, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	email = normalizeEmail(email)
	for _, o := range r.d.shopOwners {
		if o.Email == email {
			return "email", nil
		}
		if o.ContactNumber == contact {
			return "contact_number", nil
		}
	}
	return "", nil
}

func (r *shopOwnerRepo) SetOTP(_ context.Context, id, otp string, expiresAt *time.Time) error {
	return r.mutate(id, func(o *model.ShopOwner) {
		o.OTP = otp
		o.OTPExpiresAt = expiresAt
	})
}

func (r *shopOwnerRepo) CompleteOTPLogin(_ context.Context, id, token string) error {
	return r.mutate(id, func(o *model.ShopOwner) {
		o.OTP = ""
		o.OTPExpiresAt = nil
		o.OTPVerified = true
		o.Token = token
	})
}

func (r *shopOwnerRepo) mutate(id string, fn func(o *model.ShopOwner)) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	o, ok := r.d.shopOwners[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&o)
	o.UpdatedAt = r.d.now()
	r.d.shopOwners[id] = o
	return nil
}

// ---- sessions ----

type sessionRepo struct{ d *db }

func (r *sessionRepo) Create(_ context.Context, s model.Session) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.d.now()
	}
	r.d.sessions[s.ID] = s
	return nil
}

func (r *sessionRepo) Get(_ context.Context, id string) (model.Session, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	s, ok := r.d.sessions[id]
	if !ok {
		return model.Session{}, repository.ErrNotFound
	}
	return s, nil
}

func (r *sessionRepo) Revoke(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if s, ok := r.d.sessions[id]; ok && s.RevokedAt == nil {
		now := r.d.now()
		s.RevokedAt = &now
		r.d.sessions[id] = s
	}
	return nil
}

func (r *sessionRepo) RevokeAllForSubject(_ context.Context, kind model.SubjectKind, subjectID string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	now := r.d.now()
	for id, s := range r.d.sessions {
		if s.SubjectKind == kind && s.SubjectID == subjectID && s.RevokedAt == nil {
			s.RevokedAt = &now
			r.d.sessions[id] = s
		}
	}
	return nil
}

// ---- customers ----

type customerRepo struct{ d *db }

func (r *customerRepo) Create(_ context.Context, c *model.Customer) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	c.Email = normalizeEmail(c.Email)
	for _, e := range r.d.customers {
		if e.Email == c.Email {
			return &repository.DuplicateError{Field: "email"}
		}
	}
	now := r.d.now()
	c.ID = primitive.NewObjectID()
	c.CreatedOn, c.UpdatedOn = now, now
	r.d.customers[c.ID] = *c
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id primitive.ObjectID) (model.Customer, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	c, ok := r.d.customers[id]
	if !ok {
		return model.Customer{}, repository.ErrNotFound
	}
	return c, nil
}

func (r *customerRepo) GetByEmail(_ context.Context, email string) (model.Customer, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	email = normalizeEmail(email)
	for _, c := range r.d.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return model.Customer{}, repository.ErrNotFound
}

func (r *customerRepo) ListByCreator(_ context.Context, createdBy string) ([]model.Customer, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []model.Customer{}
	for _, c := range r.d.customers {
		if c.CreatedBy == createdBy {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	return out, nil
}

func (r *customerRepo) Update(_ context.Context, c model.Customer) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.customers[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.Email = normalizeEmail(c.Email)
	for id, e := range r.d.customers {
		if id != c.ID && e.Email == c.Email {
			return &repository.DuplicateError{Field: "email"}
		}
	}
	c.UpdatedOn = r.d.now()
	r.d.customers[c.ID] = c
	return nil
}

func (r *customerRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.customers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.customers, id)
	return nil
}

// ---- devices ----

type deviceRepo struct{ d *db }

func (r *deviceRepo) Create(_ context.Context, dev *model.Device) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	now := r.d.now()
	dev.ID = primitive.NewObjectID()
	dev.CreatedOn, dev.UpdatedOn = now, now
	r.d.devices[dev.ID] = *dev
	return nil
}

func (r *deviceRepo) GetByID(_ context.Context, id primitive.ObjectID) (model.Device, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	dev, ok := r.d.devices[id]
	if !ok {
		return model.Device{}, repository.ErrNotFound
	}
	return dev, nil
}

func (r *deviceRepo) LatestForCustomer(_ context.Context, customerID primitive.ObjectID) (model.Device, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var (
		latest model.Device
		found  bool
	)
	for _, dev := range r.d.devices {
		if dev.CustomerID == customerID && (!found || dev.CreatedOn.After(latest.CreatedOn)) {
			latest, found = dev, true
		}
	}
	if !found {
		return model.Device{}, repository.ErrNotFound
	}
	return latest, nil
}

func (r *deviceRepo) Update(_ context.Context, dev model.Device) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.devices[dev.ID]; !ok {
		return repository.ErrNotFound
	}
	dev.UpdatedOn = r.d.now()
	r.d.devices[dev.ID] = dev
	return nil
}

func (r *deviceRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	delete(r.d.devices, id)
	return nil
}

func (r *deviceRepo) DeleteByCustomer(_ context.Context, customerID primitive.ObjectID) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for id, dev := range r.d.devices {
		if dev.CustomerID == customerID {
			delete(r.d.devices, id)
		}
	}
	return nil
}

// ---- payments ----

type paymentRepo struct{ d *db }

func (r *paymentRepo) Create(_ context.Context, p *model.Payment) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	now := r.d.now()
	p.ID = primitive.NewObjectID()
	p.CreatedOn, p.UpdatedOn = now, now
	p.Derive()
	r.d.payments[p.ID] = *p
	return nil
}

func (r *paymentRepo) LatestForCustomer(_ context.Context, customerID primitive.ObjectID) (model.Payment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var (
		latest model.Payment
		found  bool
	)
	for _, p := range r.d.payments {
		if p.CustomerID == customerID && (!found || p.CreatedOn.After(latest.CreatedOn)) {
			latest, found = p, true
		}
	}
	if !found {
		return model.Payment{}, repository.ErrNotFound
	}
	latest.Derive()
	return latest, nil
}

func (r *paymentRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]model.Payment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []model.Payment{}
	for _, p := range r.d.payments {
		if p.CustomerID == customerID {
			p.Derive()
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.Before(out[j].CreatedOn) })
	return out, nil
}

func (r *paymentRepo) Update(_ context.Context, p model.Payment) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.payments[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedOn = r.d.now()
	p.Derive()
	r.d.payments[p.ID] = p
	return nil
}

// ---- service requests ----

type serviceRequestRepo struct{ d *db }

func (r *serviceRequestRepo) Create(_ context.Context, sr *model.ServiceRequest) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	now := r.d.now()
	sr.ID = primitive.NewObjectID()
	sr.CreatedAt, sr.UpdatedAt = now, now
	r.d.serviceRequests[sr.ID] = *sr
	return nil
}

func (r *serviceRequestRepo) GetByID(_ context.Context, id primitive.ObjectID) (model.ServiceRequest, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	sr, ok := r.d.serviceRequests[id]
	if !ok {
		return model.ServiceRequest{}, repository.ErrNotFound
	}
	return sr, nil
}

func (r *serviceRequestRepo) List(_ context.Context) ([]model.ServiceRequest, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]model.ServiceRequest, 0, len(r.d.serviceRequests))
	for _, sr := range r.d.serviceRequests {
		out = append(out, sr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *serviceRequestRepo) Patch(_ context.Context, id primitive.ObjectID, p repository.ServiceRequestPatch) (model.ServiceRequest, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	sr, ok := r.d.serviceRequests[id]
	if !ok || (p.ExpectServiceStatus != "" && sr.ServiceStatus != p.ExpectServiceStatus) {
		return model.ServiceRequest{}, repository.ErrNotFound
	}
	if p.ServiceStatus != "" {
		sr.ServiceStatus = p.ServiceStatus
	}
	if p.Status != "" {
		sr.Status = p.Status
	}
	if p.ShopOwnerID != "" {
		sr.ShopOwnerID = p.ShopOwnerID
	}
	pd := &sr.PaymentDetails
	if p.AdvanceAmount != nil {
		pd.AdvanceAmount = *p.AdvanceAmount
	}
	if p.TotalAmount != nil {
		pd.TotalAmount = *p.TotalAmount
	}
	if p.PaymentMethod != nil {
		pd.PaymentMethod = *p.PaymentMethod
	}
	if p.PaymentStatus != nil {
		pd.PaymentStatus = *p.PaymentStatus
	}
	sr.UpdatedBy = p.UpdatedBy
	sr.UpdatedAt = r.d.now()
	r.d.serviceRequests[id] = sr
	return sr, nil
}

func (r *serviceRequestRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.serviceRequests[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.serviceRequests, id)
	return nil
}

// ---- invoices ----

type invoiceRepo struct{ d *db }

func (r *invoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, e := range r.d.invoices {
		if e.InvoiceNumber == inv.InvoiceNumber {
			return &repository.DuplicateError{Field: "invoice_number"}
		}
	}
	inv.ID = primitive.NewObjectID()
	r.d.invoices[inv.ID] = *inv
	return nil
}

func (r *invoiceRepo) ListByServiceRequest(_ context.Context, id primitive.ObjectID) ([]model.Invoice, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []model.Invoice{}
	for _, inv := range r.d.invoices {
		if inv.ServiceRequestID == id {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out, nil
}

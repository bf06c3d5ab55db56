package service

import (
	"context"

	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/queue"
)

const (
	shopNameUnassigned = "Not Assigned"
	contactUnavailable = "Not Available"
)

// GenerateInvoice snapshots a request into a new invoice.  Every call
// creates a fresh record and the request itself is left untouched.
func (s *LifecycleService) GenerateInvoice(ctx context.Context, id string, actor Identity) (model.Invoice, error) {
	sr, err := s.load(ctx, id)
	if err != nil {
		return model.Invoice{}, err
	}

	shop := model.ShopDetails{ShopName: shopNameUnassigned, Contact: contactUnavailable}
	if sr.ShopOwnerID != "" {
		o, err := s.st.ShopOwners.GetByID(ctx, sr.ShopOwnerID)
		switch {
		case err == nil:
			if o.ShopName != "" {
				shop.ShopName = o.ShopName
			}
			if o.ContactNumber != "" {
				shop.Contact = o.ContactNumber
			}
		case !isNotFound(err):
			return model.Invoice{}, internal(s.logger, "invoice: shop owner lookup", err)
		}
	}

	pd := sr.PaymentDetails
	inv := model.Invoice{
		InvoiceNumber:    "INV-" + s.node.Generate().String(),
		ServiceRequestID: sr.ID,
		CustomerDetails:  sr.CustomerDetails,
		DeviceDetails:    sr.DeviceDetails,
		ShopDetails:      shop,
		TotalAmount:      pd.TotalAmount,
		AmountPaid:       pd.AdvanceAmount,
		RemainingBalance: remaining(pd.TotalAmount, pd.AdvanceAmount),
		PaymentStatus:    pd.PaymentStatus,
		InvoiceDate:      s.now(),
		CreatedBy:        actor.ID,
	}
	if err := s.st.Invoices.Create(ctx, &inv); err != nil {
		return model.Invoice{}, internal(s.logger, "invoice: create", err)
	}
	s.emit(ctx, queue.EventInvoiceIssued, sr, actor, inv.InvoiceNumber)
	return inv, nil
}

// Invoices lists every invoice generated for a request, oldest first.
func (s *LifecycleService) Invoices(ctx context.Context, id string) ([]model.Invoice, error) {
	sr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	invs, err := s.st.Invoices.ListByServiceRequest(ctx, sr.ID)
	if err != nil {
		return nil, internal(s.logger, "list invoices", err)
	}
	if invs == nil {
		invs = []model.Invoice{}
	}
	return invs, nil
}

package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// maxConflictRetries bounds how often a lost optimistic-lock race is
// retried with a fresh snapshot before the conflict surfaces.
const maxConflictRetries = 3

// Service drives billing computation and the billing/invoice state
// machines. All mutations run inside the transaction scope; combined
// invoices are kept consistent with their constituents in the same
// transaction.
type Service struct {
	orderRepo    billing.OrderRepository
	calendarRepo billing.CalendarEntryRepository
	calculator   *billing.Calculator
	txScope      TransactionScope
	logger       *zap.Logger
}

// NewService creates a billing service
func NewService(
	orderRepo billing.OrderRepository,
	calendarRepo billing.CalendarEntryRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *Service {
	return &Service{
		orderRepo:    orderRepo,
		calendarRepo: calendarRepo,
		calculator:   billing.NewCalculator(),
		txScope:      txScope,
		logger:       logger,
	}
}

func withConflictRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		err = fn()
		if err == nil || !shared.IsConflict(err) {
			return err
		}
	}
	return err
}

// ComputeOrderBilling recomputes (or creates) the billing snapshot for an
// order and month from the delivery calendar, and refreshes the customer's
// combined invoice for that month. Idempotent while the snapshot is
// mutable; rejected once it is finalized.
func (s *Service) ComputeOrderBilling(ctx context.Context, req ComputeOrderBillingRequest) (*OrderBillingResult, error) {
	month, err := valueobject.ParseBillingMonth(req.BillingMonth)
	if err != nil {
		return nil, shared.NewValidationError("VALIDATION_INVALID_MONTH", err.Error())
	}

	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	entries, err := s.calendarRepo.ListByOrderAndMonth(ctx, order.ID, month)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.calculator.Compute(order, month, entries)
	if err != nil {
		if shared.IsIntegrity(err) {
			s.logger.Error("billing integrity audit failed",
				zap.String("order_id", order.ID.String()),
				zap.String("billing_month", month.String()),
				zap.Error(err))
		}
		return nil, err
	}

	var result *OrderBillingResult
	err = withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
			ob, err := repos.OrderBillingRepo.FindByOrderAndMonth(ctx, order.ID, month)
			if err != nil && !shared.IsNotFound(err) {
				return err
			}
			created := false
			if ob == nil || shared.IsNotFound(err) {
				if ob, err = billing.NewOrderBilling(order.ID, order.CustomerID, month); err != nil {
					return err
				}
				created = true
			}

			if err := ob.ApplyBreakdown(breakdown); err != nil {
				return err
			}

			if created {
				if err := repos.OrderBillingRepo.Save(ctx, ob); err != nil {
					return err
				}
			} else if err := repos.OrderBillingRepo.SaveWithLock(ctx, ob, ob.GetVersion()); err != nil {
				return err
			}

			if err := s.refreshCombinedInvoice(ctx, repos, order.CustomerID, month); err != nil {
				return err
			}

			result = toOrderBillingResult(ob)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order billing computed",
		zap.String("order_id", order.ID.String()),
		zap.String("billing_month", month.String()),
		zap.String("total_amount", result.TotalAmount))
	return result, nil
}

// FinalizeBilling freezes a billing snapshot's amounts
func (s *Service) FinalizeBilling(ctx context.Context, billingID uuid.UUID) (*OrderBillingResult, error) {
	var result *OrderBillingResult
	err := withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
			ob, err := repos.OrderBillingRepo.FindByID(ctx, billingID)
			if err != nil {
				return err
			}
			if err := ob.Finalize(); err != nil {
				return err
			}
			if err := repos.OrderBillingRepo.SaveWithLock(ctx, ob, ob.GetVersion()); err != nil {
				return err
			}
			if err := s.refreshCombinedInvoice(ctx, repos, ob.CustomerID, ob.BillingMonth); err != nil {
				return err
			}
			result = toOrderBillingResult(ob)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order billing finalized", zap.String("billing_id", billingID.String()))
	return result, nil
}

// ReopenBilling reverts a finalized billing to calculating so calendar
// edits can be re-applied. Blocked once the combined invoice covering it
// has been finalized.
func (s *Service) ReopenBilling(ctx context.Context, billingID uuid.UUID) (*OrderBillingResult, error) {
	var result *OrderBillingResult
	err := withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
			ob, err := repos.OrderBillingRepo.FindByID(ctx, billingID)
			if err != nil {
				return err
			}

			ci, err := repos.CombinedInvoiceRepo.FindByCustomerAndMonth(ctx, ob.CustomerID, ob.BillingMonth)
			if err != nil && !shared.IsNotFound(err) {
				return err
			}
			if ci != nil && (ci.Status == billing.InvoiceStatusFinalized || ci.Status == billing.InvoiceStatusPaid) {
				return shared.NewValidationError("IMMUTABLE_BILLING",
					"Combined invoice for this month is "+string(ci.Status)+"; constituent billings cannot be reopened")
			}

			if err := ob.Reopen(); err != nil {
				return err
			}
			if err := repos.OrderBillingRepo.SaveWithLock(ctx, ob, ob.GetVersion()); err != nil {
				return err
			}
			if err := s.refreshCombinedInvoice(ctx, repos, ob.CustomerID, ob.BillingMonth); err != nil {
				return err
			}
			result = toOrderBillingResult(ob)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order billing reopened", zap.String("billing_id", billingID.String()))
	return result, nil
}

// GetOrderBilling fetches a billing snapshot by id
func (s *Service) GetOrderBilling(ctx context.Context, billingID uuid.UUID) (*OrderBillingResult, error) {
	var result *OrderBillingResult
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		ob, err := repos.OrderBillingRepo.FindByID(ctx, billingID)
		if err != nil {
			return err
		}
		result = toOrderBillingResult(ob)
		return nil
	})
	return result, err
}

// GetOrderBillingForMonth fetches the billing snapshot for an order and month
func (s *Service) GetOrderBillingForMonth(ctx context.Context, orderID uuid.UUID, billingMonth string) (*OrderBillingResult, error) {
	month, err := valueobject.ParseBillingMonth(billingMonth)
	if err != nil {
		return nil, shared.NewValidationError("VALIDATION_INVALID_MONTH", err.Error())
	}

	var result *OrderBillingResult
	err = s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		ob, err := repos.OrderBillingRepo.FindByOrderAndMonth(ctx, orderID, month)
		if err != nil {
			return err
		}
		result = toOrderBillingResult(ob)
		return nil
	})
	return result, err
}

// ComputeCombinedInvoice recomputes (or creates) the customer-level
// aggregate for a month from its constituent billings
func (s *Service) ComputeCombinedInvoice(ctx context.Context, req ComputeCombinedInvoiceRequest) (*CombinedInvoiceResult, error) {
	month, err := valueobject.ParseBillingMonth(req.BillingMonth)
	if err != nil {
		return nil, shared.NewValidationError("VALIDATION_INVALID_MONTH", err.Error())
	}

	var result *CombinedInvoiceResult
	err = withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
			ci, err := s.refreshCombinedInvoiceFor(ctx, repos, req.CustomerID, month)
			if err != nil {
				return err
			}
			result = toCombinedInvoiceResult(ci)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("combined invoice computed",
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("billing_month", month.String()),
		zap.String("total_amount", result.TotalAmount))
	return result, nil
}

// FinalizeCombinedInvoice freezes the combined total and makes the
// invoice payable. Constituent billings move through approved to
// invoiced in the same transaction.
func (s *Service) FinalizeCombinedInvoice(ctx context.Context, invoiceID uuid.UUID) (*CombinedInvoiceResult, error) {
	var result *CombinedInvoiceResult
	err := withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
			ci, err := repos.CombinedInvoiceRepo.FindByID(ctx, invoiceID)
			if err != nil {
				return err
			}
			if err := ci.Finalize(); err != nil {
				return err
			}
			if err := repos.CombinedInvoiceRepo.SaveWithLock(ctx, ci, ci.GetVersion()); err != nil {
				return err
			}

			for _, obID := range ci.OrderBillingIDs {
				ob, err := repos.OrderBillingRepo.FindByID(ctx, obID)
				if err != nil {
					return err
				}
				if err := ob.Approve(); err != nil {
					return err
				}
				if err := ob.MarkInvoiced(); err != nil {
					return err
				}
				if err := repos.OrderBillingRepo.SaveWithLock(ctx, ob, ob.GetVersion()); err != nil {
					return err
				}
			}

			result = toCombinedInvoiceResult(ci)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("combined invoice finalized", zap.String("invoice_id", invoiceID.String()))
	return result, nil
}

// GetCombinedInvoice fetches a combined invoice by id
func (s *Service) GetCombinedInvoice(ctx context.Context, invoiceID uuid.UUID) (*CombinedInvoiceResult, error) {
	var result *CombinedInvoiceResult
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		ci, err := repos.CombinedInvoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		result = toCombinedInvoiceResult(ci)
		return nil
	})
	return result, err
}

// GetCombinedInvoiceForMonth fetches the customer's combined invoice for a month
func (s *Service) GetCombinedInvoiceForMonth(ctx context.Context, customerID uuid.UUID, billingMonth string) (*CombinedInvoiceResult, error) {
	month, err := valueobject.ParseBillingMonth(billingMonth)
	if err != nil {
		return nil, shared.NewValidationError("VALIDATION_INVALID_MONTH", err.Error())
	}

	var result *CombinedInvoiceResult
	err = s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		ci, err := repos.CombinedInvoiceRepo.FindByCustomerAndMonth(ctx, customerID, month)
		if err != nil {
			return err
		}
		result = toCombinedInvoiceResult(ci)
		return nil
	})
	return result, err
}

// ListUnpaidInvoices returns the customer's payable invoices oldest
// billing month first
func (s *Service) ListUnpaidInvoices(ctx context.Context, customerID uuid.UUID) ([]*CombinedInvoiceResult, error) {
	var results []*CombinedInvoiceResult
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		invoices, err := repos.CombinedInvoiceRepo.ListUnpaidByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		results = make([]*CombinedInvoiceResult, 0, len(invoices))
		for _, ci := range invoices {
			results = append(results, toCombinedInvoiceResult(ci))
		}
		return nil
	})
	return results, err
}

func (s *Service) refreshCombinedInvoice(ctx context.Context, repos TransactionRepositories, customerID uuid.UUID, month valueobject.BillingMonth) error {
	_, err := s.refreshCombinedInvoiceFor(ctx, repos, customerID, month)
	return err
}

// refreshCombinedInvoiceFor re-derives the customer's combined invoice
// from the current constituent set. A finalized or paid invoice is left
// untouched; its total is frozen.
func (s *Service) refreshCombinedInvoiceFor(ctx context.Context, repos TransactionRepositories, customerID uuid.UUID, month valueobject.BillingMonth) (*billing.CombinedInvoice, error) {
	ci, err := repos.CombinedInvoiceRepo.FindByCustomerAndMonth(ctx, customerID, month)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	created := false
	if ci == nil || shared.IsNotFound(err) {
		if ci, err = billing.NewCombinedInvoice(customerID, month); err != nil {
			return nil, err
		}
		created = true
	}

	if ci.Status == billing.InvoiceStatusFinalized || ci.Status == billing.InvoiceStatusPaid {
		return ci, nil
	}

	constituents, err := repos.OrderBillingRepo.ListByCustomerAndMonth(ctx, customerID, month)
	if err != nil {
		return nil, err
	}
	if err := ci.Recalculate(constituents); err != nil {
		return nil, err
	}

	if created {
		err = repos.CombinedInvoiceRepo.Save(ctx, ci)
	} else {
		err = repos.CombinedInvoiceRepo.SaveWithLock(ctx, ci, ci.GetVersion())
	}
	if err != nil {
		return nil, err
	}
	return ci, nil
}

package payment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tiffin/backend/internal/domain/payment"
	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// maxConflictRetries bounds how often a lost optimistic-lock race is
// retried with a fresh snapshot before the conflict surfaces.
const maxConflictRetries = 3

// AllocatorConfig carries allocation policy knobs
type AllocatorConfig struct {
	// AutoSelectLimit caps how many invoices the auto-select preview
	// suggests; 0 means uncapped. Commit-time automatic allocation is
	// never capped: it walks unpaid invoices until the payment or the
	// debt is exhausted.
	AutoSelectLimit int
}

// AllocationService allocates incoming payments across a customer's
// unpaid invoices and credit balance, and unwinds them on deletion.
// Every commit runs under the customer's lock and inside one
// transaction; conflicts retry with a fresh snapshot.
type AllocationService struct {
	txScope TransactionScope
	locker  CustomerLocker
	config  AllocatorConfig
	logger  *zap.Logger
}

// NewAllocationService creates an allocation service
func NewAllocationService(txScope TransactionScope, locker CustomerLocker, config AllocatorConfig, logger *zap.Logger) *AllocationService {
	return &AllocationService{
		txScope: txScope,
		locker:  locker,
		config:  config,
		logger:  logger,
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

func parseAmount(s, field string) (valueobject.Money, error) {
	if s == "" {
		return valueobject.ZeroCAD(), nil
	}
	m, err := valueobject.NewMoneyCADFromString(s)
	if err != nil {
		return valueobject.Money{}, shared.NewValidationError("VALIDATION_INVALID_AMOUNT", "Invalid "+field+": "+s)
	}
	if m.IsNegative() {
		return valueobject.Money{}, shared.NewValidationError("VALIDATION_INVALID_AMOUNT", field+" cannot be negative")
	}
	return m, nil
}

// CreatePayment records an incoming payment with no allocations yet
func (s *AllocationService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResult, error) {
	amount, err := parseAmount(req.Amount, "payment amount")
	if err != nil {
		return nil, err
	}

	p, err := payment.NewPaymentRecord(req.CustomerID, amount, req.PaymentDate, req.Source, req.Reference)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		return repos.PaymentRepo.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", p.ID.String()),
		zap.String("customer_id", p.CustomerID.String()),
		zap.String("amount", p.Amount.StringFixed(2)),
		zap.String("source", string(p.Source)))
	return toPaymentResult(p), nil
}

// GetPayment fetches a payment by id
func (s *AllocationService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResult, error) {
	var result *PaymentResult
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		p, err := repos.PaymentRepo.FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		result = toPaymentResult(p)
		return nil
	})
	return result, err
}

// ListPayments returns the customer's payment history, newest first
func (s *AllocationService) ListPayments(ctx context.Context, customerID uuid.UUID) ([]*PaymentResult, error) {
	var results []*PaymentResult
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		payments, err := repos.PaymentRepo.ListByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		results = make([]*PaymentResult, 0, len(payments))
		for _, p := range payments {
			results = append(results, toPaymentResult(p))
		}
		return nil
	})
	return results, err
}

// AutoSelect previews the oldest-invoice-first split of an amount across
// the customer's unpaid invoices. Read-only; the configured limit only
// trims the suggestion list, never the committed allocation.
func (s *AllocationService) AutoSelect(ctx context.Context, req AutoSelectRequest) (*AutoSelectResult, error) {
	amount, err := parseAmount(req.Amount, "payment amount")
	if err != nil {
		return nil, err
	}

	result := &AutoSelectResult{SelectedInvoices: make([]SelectedInvoice, 0)}
	err = s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		invoices, err := repos.InvoiceRepo.ListUnpaidByCustomer(ctx, req.CustomerID)
		if err != nil {
			return err
		}

		remaining := amount
		for _, ci := range invoices {
			if !remaining.IsPositive() {
				break
			}
			if s.config.AutoSelectLimit > 0 && len(result.SelectedInvoices) >= s.config.AutoSelectLimit {
				break
			}
			slice := minMoney(ci.BalanceDue(), remaining)
			remaining = remaining.MustSubtract(slice)
			result.SelectedInvoices = append(result.SelectedInvoices, SelectedInvoice{
				InvoiceID:    ci.ID,
				BillingMonth: ci.BillingMonth.String(),
				BalanceDue:   ci.BalanceDue().StringFixed(2),
				Amount:       slice.StringFixed(2),
			})
		}
		result.RemainingAmount = remaining.StringFixed(2)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// allocationPlan is one validated entry ready to commit
type allocationPlan struct {
	invoiceID    uuid.UUID
	amount       valueobject.Money
	creditAmount valueobject.Money
}

// AllocatePayment validates and commits a payment's allocation split.
// With no explicit entries, invoices are selected automatically oldest
// first until the payment or the debt runs out; any remainder becomes
// customer credit. The whole request validates before anything mutates.
func (s *AllocationService) AllocatePayment(ctx context.Context, req AllocatePaymentRequest) (*AllocationResult, error) {
	p, err := s.findPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, p.CustomerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *AllocationResult
	err = withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
			p, err := repos.PaymentRepo.FindByID(ctx, req.PaymentID)
			if err != nil {
				return err
			}
			if p.IsAllocated() {
				return shared.NewValidationError("VALIDATION_ALREADY_ALLOCATED",
					"Payment "+p.ID.String()+" has already been allocated")
			}

			plans, err := s.buildPlans(ctx, repos, p, req.Allocations)
			if err != nil {
				return err
			}

			credits, err := repos.CreditRepo.ListAvailableByCustomer(ctx, p.CustomerID)
			if err != nil {
				return err
			}
			if err := s.validatePlans(ctx, repos, p, plans, availableTotal(credits)); err != nil {
				return err
			}

			res, err := s.commitPlans(ctx, repos, p, plans, credits)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment allocated",
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("status", string(result.AllocationStatus)),
		zap.String("total_allocated", result.TotalAllocated),
		zap.String("excess_amount", result.ExcessAmount))
	return result, nil
}

// buildPlans turns caller entries into a commit plan, or derives one
// automatically when no entries were supplied
func (s *AllocationService) buildPlans(ctx context.Context, repos TransactionRepositories, p *payment.PaymentRecord, entries []AllocationEntry) ([]allocationPlan, error) {
	if len(entries) == 0 {
		return s.autoPlans(ctx, repos, p)
	}

	plans := make([]allocationPlan, 0, len(entries))
	seen := make(map[uuid.UUID]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.InvoiceID]; dup {
			return nil, shared.NewValidationError("VALIDATION_DUPLICATE_INVOICE",
				"Invoice "+e.InvoiceID.String()+" appears more than once in the allocation")
		}
		seen[e.InvoiceID] = struct{}{}

		amount, err := parseAmount(e.Amount, "allocation amount")
		if err != nil {
			return nil, err
		}
		creditAmount, err := parseAmount(e.CreditAmount, "credit amount")
		if err != nil {
			return nil, err
		}
		plans = append(plans, allocationPlan{invoiceID: e.InvoiceID, amount: amount, creditAmount: creditAmount})
	}
	return plans, nil
}

func (s *AllocationService) autoPlans(ctx context.Context, repos TransactionRepositories, p *payment.PaymentRecord) ([]allocationPlan, error) {
	invoices, err := repos.InvoiceRepo.ListUnpaidByCustomer(ctx, p.CustomerID)
	if err != nil {
		return nil, err
	}

	plans := make([]allocationPlan, 0, len(invoices))
	remaining := p.Amount
	for _, ci := range invoices {
		if !remaining.IsPositive() {
			break
		}
		slice := minMoney(ci.BalanceDue(), remaining)
		remaining = remaining.MustSubtract(slice)
		plans = append(plans, allocationPlan{invoiceID: ci.ID, amount: slice, creditAmount: valueobject.ZeroCAD()})
	}
	return plans, nil
}

// validatePlans checks the whole request against the ledger before any
// mutation: per-entry bounds against balance due, the over-allocation
// cap against the payment amount, and a running credit counter so later
// entries see credit already claimed by earlier ones.
func (s *AllocationService) validatePlans(ctx context.Context, repos TransactionRepositories, p *payment.PaymentRecord, plans []allocationPlan, availableCredit valueobject.Money) error {
	totalAmount := valueobject.ZeroCAD()
	remainingCredit := availableCredit

	for _, plan := range plans {
		ci, err := repos.InvoiceRepo.FindByID(ctx, plan.invoiceID)
		if err != nil {
			return err
		}
		if !ci.IsPayable() {
			return shared.NewValidationError("VALIDATION_INVOICE_NOT_PAYABLE",
				"Invoice "+ci.ID.String()+" is not open for allocation")
		}

		balance := ci.BalanceDue()
		if exceeds, err := plan.amount.GreaterThan(balance); err != nil {
			return err
		} else if exceeds {
			return shared.NewValidationError("EXCEEDS_BALANCE_DUE",
				"Allocation of "+plan.amount.String()+" exceeds balance due "+balance.String()+" on invoice "+ci.ID.String())
		}

		if plan.creditAmount.IsPositive() {
			headroom := balance.MustSubtract(plan.amount)
			if exceeds, err := plan.creditAmount.GreaterThan(headroom); err != nil {
				return err
			} else if exceeds {
				return shared.NewValidationError("EXCEEDS_BALANCE_DUE",
					"Credit of "+plan.creditAmount.String()+" exceeds remaining balance "+headroom.String()+" on invoice "+ci.ID.String())
			}
			if exceeds, err := plan.creditAmount.GreaterThan(remainingCredit); err != nil {
				return err
			} else if exceeds {
				return shared.NewValidationError("INSUFFICIENT_CREDIT",
					"Credit of "+plan.creditAmount.String()+" exceeds remaining available credit "+remainingCredit.String())
			}
			remainingCredit = remainingCredit.MustSubtract(plan.creditAmount)
		}

		totalAmount = totalAmount.MustAdd(plan.amount)
	}

	if exceeds, err := totalAmount.GreaterThan(p.Amount); err != nil {
		return err
	} else if exceeds {
		return shared.NewValidationError("OVER_ALLOCATION",
			"Total allocation "+totalAmount.String()+" exceeds payment amount "+p.Amount.String())
	}
	return nil
}

// commitPlans applies the validated plan: invoices absorb their slices,
// credit draws down oldest credit first with a usage row per draw, the
// payment records its split, and any excess becomes new customer credit.
func (s *AllocationService) commitPlans(ctx context.Context, repos TransactionRepositories, p *payment.PaymentRecord, plans []allocationPlan, credits []*payment.CustomerCredit) (*AllocationResult, error) {
	allocations := make([]*payment.PaymentAllocation, 0, len(plans))
	anyTargetOpen := false

	for _, plan := range plans {
		ci, err := repos.InvoiceRepo.FindByID(ctx, plan.invoiceID)
		if err != nil {
			return nil, err
		}
		if err := ci.ApplyPayment(plan.amount, plan.creditAmount); err != nil {
			return nil, err
		}
		if err := repos.InvoiceRepo.SaveWithLock(ctx, ci, ci.GetVersion()); err != nil {
			return nil, err
		}
		if ci.BalanceDue().IsPositive() {
			anyTargetOpen = true
		}

		alloc, err := payment.NewPaymentAllocation(p.ID, ci.ID, plan.amount, plan.creditAmount)
		if err != nil {
			return nil, err
		}
		alloc.ResultingStatus = string(ci.Status)
		allocations = append(allocations, alloc)

		if plan.creditAmount.IsPositive() {
			if err := s.drawCredit(ctx, repos, p, ci.ID, plan.creditAmount, credits); err != nil {
				return nil, err
			}
		}
	}

	if err := p.RecordAllocations(allocations, anyTargetOpen); err != nil {
		return nil, err
	}

	if p.ExcessAmount.IsPositive() {
		sourceID := p.ID
		credit, err := payment.NewCustomerCredit(p.CustomerID, &sourceID, p.ExcessAmount)
		if err != nil {
			return nil, err
		}
		if err := repos.CreditRepo.Save(ctx, credit); err != nil {
			return nil, err
		}
	}

	if err := repos.PaymentRepo.SaveWithLock(ctx, p, p.GetVersion()); err != nil {
		return nil, err
	}

	return &AllocationResult{
		PaymentID:        p.ID,
		AllocationStatus: p.Status,
		TotalAllocated:   p.TotalAllocated.StringFixed(2),
		ExcessAmount:     p.ExcessAmount.StringFixed(2),
		CreditApplied:    p.CreditApplied().StringFixed(2),
	}, nil
}

// drawCredit consumes the requested credit amount oldest credit first,
// spanning multiple credits when one alone cannot cover it
func (s *AllocationService) drawCredit(ctx context.Context, repos TransactionRepositories, p *payment.PaymentRecord, invoiceID uuid.UUID, amount valueobject.Money, credits []*payment.CustomerCredit) error {
	remaining := amount
	for _, credit := range credits {
		if !remaining.IsPositive() {
			break
		}
		if !credit.IsAvailable() {
			continue
		}

		draw := minMoney(credit.CurrentBalance, remaining)
		if err := credit.Consume(draw); err != nil {
			return err
		}
		if err := repos.CreditRepo.SaveWithLock(ctx, credit, credit.GetVersion()); err != nil {
			return err
		}

		usage, err := payment.NewCreditUsage(credit.ID, invoiceID, p.ID, draw)
		if err != nil {
			return err
		}
		if err := repos.CreditUsageRepo.Save(ctx, usage); err != nil {
			return err
		}
		remaining = remaining.MustSubtract(draw)
	}

	if remaining.IsPositive() {
		return shared.NewIntegrityError("INTEGRITY_INSUFFICIENT_CREDIT",
			"Validated credit draw of "+amount.String()+" could not be covered by available credits")
	}
	return nil
}

// DeletePayment unwinds a payment in one transaction: every allocation
// is reverted off its invoice, consumed credit is restored, and the
// credit the payment itself produced is removed. If that credit has
// since been spent or refunded the deletion fails whole, leaving the
// ledger untouched.
func (s *AllocationService) DeletePayment(ctx context.Context, paymentID uuid.UUID, reason string) error {
	if reason == "" {
		return shared.NewValidationError("VALIDATION_REASON_REQUIRED", "A deletion reason is required")
	}

	p, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, p.CustomerID)
	if err != nil {
		return err
	}
	defer unlock()

	err = withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
			p, err := repos.PaymentRepo.FindByID(ctx, paymentID)
			if err != nil {
				return err
			}

			sourced, err := repos.CreditRepo.FindBySourcePayment(ctx, p.ID)
			if err != nil && !shared.IsNotFound(err) {
				return err
			}
			if sourced != nil && !shared.IsNotFound(err) {
				if sourced.Status != payment.CreditStatusAvailable || !sourced.CurrentBalance.Equals(sourced.OriginalAmount) {
					return shared.NewIntegrityError("CREDIT_ALREADY_CONSUMED",
						"Credit "+sourced.ID.String()+" produced by this payment has been spent or refunded; the payment cannot be deleted")
				}
				if err := repos.CreditRepo.Delete(ctx, sourced); err != nil {
					return err
				}
			}

			usages, err := repos.CreditUsageRepo.ListByPayment(ctx, p.ID)
			if err != nil {
				return err
			}
			for _, u := range usages {
				credit, err := repos.CreditRepo.FindByID(ctx, u.CreditID)
				if err != nil {
					return err
				}
				if err := credit.Restore(u.AmountUsed); err != nil {
					return err
				}
				if err := repos.CreditRepo.SaveWithLock(ctx, credit, credit.GetVersion()); err != nil {
					return err
				}
			}
			if len(usages) > 0 {
				if err := repos.CreditUsageRepo.DeleteByPayment(ctx, p.ID); err != nil {
					return err
				}
			}

			for _, a := range p.Allocations {
				ci, err := repos.InvoiceRepo.FindByID(ctx, a.InvoiceID)
				if err != nil {
					return err
				}
				if err := ci.RevertPayment(a.AllocatedAmount, a.CreditAmountUsed); err != nil {
					return err
				}
				if err := repos.InvoiceRepo.SaveWithLock(ctx, ci, ci.GetVersion()); err != nil {
					return err
				}
			}

			return repos.PaymentRepo.Delete(ctx, p, reason)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("payment deleted",
		zap.String("payment_id", paymentID.String()),
		zap.String("reason", reason))
	return nil
}

func (s *AllocationService) findPayment(ctx context.Context, paymentID uuid.UUID) (*payment.PaymentRecord, error) {
	var p *payment.PaymentRecord
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		var err error
		p, err = repos.PaymentRepo.FindByID(ctx, paymentID)
		return err
	})
	return p, err
}

func availableTotal(credits []*payment.CustomerCredit) valueobject.Money {
	total := valueobject.ZeroCAD()
	for _, c := range credits {
		if c.IsAvailable() {
			total = total.MustAdd(c.CurrentBalance)
		}
	}
	return total
}

func minMoney(a, b valueobject.Money) valueobject.Money {
	if less, _ := a.LessThan(b); less {
		return a
	}
	return b
}

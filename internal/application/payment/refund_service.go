package payment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tiffin/backend/internal/domain/payment"
	"github.com/tiffin/backend/internal/domain/shared"
)

// RefundService runs the refund workflow. A pending request holds no
// ledger state; only approval decrements the source credit, in the same
// transaction that completes the request.
type RefundService struct {
	txScope TransactionScope
	locker  CustomerLocker
	logger  *zap.Logger
}

// NewRefundService creates a refund service
func NewRefundService(txScope TransactionScope, locker CustomerLocker, logger *zap.Logger) *RefundService {
	return &RefundService{txScope: txScope, locker: locker, logger: logger}
}

// RequestRefund creates a pending refund against a credit, or against a
// payment by resolving the credit that payment produced
func (s *RefundService) RequestRefund(ctx context.Context, req RequestRefundRequest) (*RefundResult, error) {
	amount, err := parseAmount(req.Amount, "refund amount")
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("VALIDATION_INVALID_AMOUNT", "Refund amount must be positive")
	}

	var result *RefundResult
	err = s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		credit, err := s.resolveCredit(ctx, repos, req.Source, req.SourceID)
		if err != nil {
			return err
		}
		if credit.CustomerID != req.CustomerID {
			return shared.NewValidationError("INVALID_INPUT", "Credit does not belong to this customer")
		}
		if exceeds, err := amount.GreaterThan(credit.CurrentBalance); err != nil {
			return err
		} else if exceeds {
			return shared.NewValidationError("INSUFFICIENT_CREDIT",
				"Refund amount "+amount.String()+" exceeds credit balance "+credit.CurrentBalance.String())
		}

		r, err := payment.NewRefundRequest(req.Source, req.SourceID, req.CustomerID, amount, req.Method, req.Reason)
		if err != nil {
			return err
		}
		if err := repos.RefundRepo.Save(ctx, r); err != nil {
			return err
		}
		result = toRefundResult(r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund requested",
		zap.String("refund_id", result.ID.String()),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("amount", result.RefundAmount))
	return result, nil
}

// ApproveRefund completes a pending refund, decrementing the source
// credit in the same transaction. The balance check re-runs against the
// current ledger because credit may have been spent since the request.
func (s *RefundService) ApproveRefund(ctx context.Context, refundID uuid.UUID, req ApproveRefundRequest) (*RefundResult, error) {
	r, err := s.findRefund(ctx, refundID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, r.CustomerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *RefundResult
	err = withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
			r, err := repos.RefundRepo.FindByID(ctx, refundID)
			if err != nil {
				return err
			}

			credit, err := s.resolveCredit(ctx, repos, r.Source, r.SourceID)
			if err != nil {
				return err
			}
			if err := credit.ApplyRefund(r.RefundAmount); err != nil {
				return err
			}
			if err := repos.CreditRepo.SaveWithLock(ctx, credit, credit.GetVersion()); err != nil {
				return err
			}

			if err := r.Approve(req.ApprovedBy, req.Reference); err != nil {
				return err
			}
			if err := repos.RefundRepo.SaveWithLock(ctx, r, r.GetVersion()); err != nil {
				return err
			}
			result = toRefundResult(r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund approved",
		zap.String("refund_id", refundID.String()),
		zap.String("approved_by", req.ApprovedBy))
	return result, nil
}

// CancelRefund withdraws a pending refund; the ledger is untouched
func (s *RefundService) CancelRefund(ctx context.Context, refundID uuid.UUID) (*RefundResult, error) {
	var result *RefundResult
	err := withConflictRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
			r, err := repos.RefundRepo.FindByID(ctx, refundID)
			if err != nil {
				return err
			}
			if err := r.Cancel(); err != nil {
				return err
			}
			if err := repos.RefundRepo.SaveWithLock(ctx, r, r.GetVersion()); err != nil {
				return err
			}
			result = toRefundResult(r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund cancelled", zap.String("refund_id", refundID.String()))
	return result, nil
}

// GetRefund fetches a refund request by id
func (s *RefundService) GetRefund(ctx context.Context, refundID uuid.UUID) (*RefundResult, error) {
	r, err := s.findRefund(ctx, refundID)
	if err != nil {
		return nil, err
	}
	return toRefundResult(r), nil
}

// ListRefunds returns the customer's refund requests, newest first
func (s *RefundService) ListRefunds(ctx context.Context, customerID uuid.UUID) ([]*RefundResult, error) {
	var results []*RefundResult
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		refunds, err := repos.RefundRepo.ListByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		results = make([]*RefundResult, 0, len(refunds))
		for _, r := range refunds {
			results = append(results, toRefundResult(r))
		}
		return nil
	})
	return results, err
}

func (s *RefundService) findRefund(ctx context.Context, refundID uuid.UUID) (*payment.RefundRequest, error) {
	var r *payment.RefundRequest
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		var err error
		r, err = repos.RefundRepo.FindByID(ctx, refundID)
		return err
	})
	return r, err
}

// resolveCredit finds the credit a refund draws from: directly for
// credit-sourced refunds, via the payment's produced credit otherwise
func (s *RefundService) resolveCredit(ctx context.Context, repos TransactionRepositories, source payment.RefundSource, sourceID uuid.UUID) (*payment.CustomerCredit, error) {
	switch source {
	case payment.RefundSourceCredit:
		return repos.CreditRepo.FindByID(ctx, sourceID)
	case payment.RefundSourcePayment:
		return repos.CreditRepo.FindBySourcePayment(ctx, sourceID)
	default:
		return nil, shared.NewValidationError("VALIDATION_INVALID_SOURCE", "Invalid refund source: "+string(source))
	}
}

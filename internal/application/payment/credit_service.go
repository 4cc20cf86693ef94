package payment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditService exposes the customer's credit position. Credit is only
// ever applied to invoices through the allocator; this service reads.
type CreditService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewCreditService creates a credit service
func NewCreditService(txScope TransactionScope, logger *zap.Logger) *CreditService {
	return &CreditService{txScope: txScope, logger: logger}
}

// GetAvailableCredit returns the customer's spendable credits and their
// total, oldest first
func (s *CreditService) GetAvailableCredit(ctx context.Context, customerID uuid.UUID) (*AvailableCreditResult, error) {
	result := &AvailableCreditResult{
		CustomerID: customerID,
		Credits:    make([]*CreditResult, 0),
	}
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		credits, err := repos.CreditRepo.ListAvailableByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		for _, c := range credits {
			result.Credits = append(result.Credits, toCreditResult(c))
		}
		result.TotalAvailable = availableTotal(credits).StringFixed(2)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListCredits returns all of the customer's credits regardless of status
func (s *CreditService) ListCredits(ctx context.Context, customerID uuid.UUID) ([]*CreditResult, error) {
	var results []*CreditResult
	err := s.txScope.Execute(ctx, func(repos TransactionRepositories) error {
		credits, err := repos.CreditRepo.ListByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		results = make([]*CreditResult, 0, len(credits))
		for _, c := range credits {
			results = append(results, toCreditResult(c))
		}
		return nil
	})
	return results, err
}

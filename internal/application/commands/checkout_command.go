package commands

import (
	"context"
	"errors"

	"github.com/pharmaterm/pos-core/internal/application/use_cases"
	domainErrors "github.com/pharmaterm/pos-core/internal/domain/errors"
	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/infrastructure/monitoring"
	"github.com/pharmaterm/pos-core/internal/pkg/generator"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

// CheckoutHandler is what the sales screen binds its "finish sale" action
// to. It finalizes the cart, runs the commit, and clears the cart on both
// committed and deferred outcomes; on failure the cart is kept so the
// operator can adjust and retry.
type CheckoutHandler struct {
	checkout *use_cases.CheckoutUseCase
	refGen   *generator.ReferenceGenerator
	log      *logger.Logger
}

func NewCheckoutHandler(
	checkout *use_cases.CheckoutUseCase,
	refGen *generator.ReferenceGenerator,
	log *logger.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		refGen:   refGen,
		log:      log,
	}
}

func (h *CheckoutHandler) Handle(ctx context.Context, cart *pos.Cart) (*pos.Receipt, error) {
	monitoring.RecordCheckoutAttempt()

	payload, err := cart.Finalize(h.refGen.NewReference())
	if err != nil {
		monitoring.RecordCheckoutFailure("validation")
		return nil, err
	}

	receipt, err := h.checkout.Execute(ctx, payload)
	if err != nil {
		monitoring.RecordCheckoutFailure(failureReason(err))
		return nil, err
	}

	cart.Clear()

	if receipt.Deferred {
		monitoring.RecordCheckoutDeferred()
	} else {
		monitoring.RecordCheckoutCommitted()
	}

	return receipt, nil
}

func failureReason(err error) string {
	var partial *domainErrors.PartialCommitError
	switch {
	case errors.As(err, &partial):
		return "partial_commit"
	case errors.Is(err, domainErrors.ErrRejectedByLedger):
		return "rejected_by_ledger"
	case domainErrors.IsTransport(err):
		return "transport"
	case domainErrors.IsValidation(err):
		return "validation"
	default:
		return "other"
	}
}

package worker

import (
	"context"
	"time"

	"freshmart-backend/internal/infrastructure/payment"
	"freshmart-backend/internal/repo"

	"go.uber.org/zap"
)

const batchSize = 50

// ReconciliationWorker periodically re-verifies unpaid orders against the
// gateway. It covers webhooks that were lost in transit or rejected while
// the store was unavailable.
type ReconciliationWorker struct {
	orderRepo repo.OrderRepo
	gateway   payment.Gateway
	interval  time.Duration
	olderThan time.Duration
	logger    *zap.Logger
}

func NewReconciliationWorker(
	orderRepo repo.OrderRepo,
	gateway payment.Gateway,
	interval time.Duration,
	olderThan time.Duration,
	logger *zap.Logger,
) *ReconciliationWorker {
	return &ReconciliationWorker{
		orderRepo: orderRepo,
		gateway:   gateway,
		interval:  interval,
		olderThan: olderThan,
		logger:    logger,
	}
}

func (rw *ReconciliationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("reconciliation worker started",
		zap.Duration("interval", rw.interval), zap.Duration("older_than", rw.olderThan))

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("reconciliation worker stopped")
			return
		case <-ticker.C:
			if err := rw.process(ctx); err != nil {
				rw.logger.Error("reconciliation sweep failed", zap.Error(err))
			}
		}
	}
}

func (rw *ReconciliationWorker) process(ctx context.Context) error {
	cutoff := time.Now().Add(-rw.olderThan)
	orders, err := rw.orderRepo.FindUnpaidBefore(ctx, cutoff, batchSize)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	rw.logger.Info("reconciling unpaid orders", zap.Int("count", len(orders)))

	for _, order := range orders {
		data, err := rw.gateway.VerifyTransaction(ctx, order.PaymentReference)
		if err != nil {
			// Leave the order for the next sweep.
			rw.logger.Warn("verification failed during sweep",
				zap.String("reference", order.PaymentReference), zap.Error(err))
			continue
		}

		if data.Status != payment.StatusSuccess {
			continue
		}

		if err := rw.orderRepo.MarkPaid(ctx, order.PaymentReference); err != nil {
			rw.logger.Warn("mark paid failed during sweep",
				zap.String("reference", order.PaymentReference), zap.Error(err))
			continue
		}
		rw.logger.Info("reconciled missed payment",
			zap.String("reference", order.PaymentReference))
	}
	return nil
}

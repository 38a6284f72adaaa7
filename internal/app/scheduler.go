package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/service"
	"go.uber.org/zap"
)

// Scheduler периодически запускает сверку слотов и запросов
type Scheduler struct {
	reconciler *service.Reconciler
	interval   time.Duration
	logger     *zap.Logger
	stopChan   chan struct{}
	done       chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(reconciler *service.Reconciler, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start запускает фоновую задачу. Нулевой интервал отключает её.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Background reconcile disabled")
		close(s.done)
		return
	}

	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))
	go s.runReconcileTask(ctx)
}

// Stop останавливает фоновую задачу и ждёт её завершения
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	<-s.done
}

func (s *Scheduler) runReconcileTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.reconcile(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reconcile(ctx)
		case <-s.stopChan:
			s.logger.Info("Reconcile task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reconcile task cancelled")
			return
		}
	}
}

func (s *Scheduler) reconcile(ctx context.Context) {
	if _, err := s.reconciler.Reconcile(ctx); err != nil {
		s.logger.Error("Reconcile failed", zap.Error(err))
	}
}

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/sse"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// CatalogAuditor is what the audit worker needs from the catalog service.
type CatalogAuditor interface {
	ListProductIDs(ctx context.Context) ([]int, error)
	AuditProduct(ctx context.Context, productID int) (*service.AuditReport, error)
}

// CatalogAuditWorker periodically validates every active product catalog and
// reports the ones that cannot be sold as authored.
type CatalogAuditWorker struct {
	catalog     CatalogAuditor
	notifier    sse.IntegrityNotifier
	interval    time.Duration
	concurrency int
}

// NewCatalogAuditWorker constructs a CatalogAuditWorker.
func NewCatalogAuditWorker(catalog CatalogAuditor, notifier sse.IntegrityNotifier, interval time.Duration) *CatalogAuditWorker {
	if notifier == nil {
		notifier = sse.NopNotifier{}
	}
	return &CatalogAuditWorker{
		catalog:     catalog,
		notifier:    notifier,
		interval:    interval,
		concurrency: 4,
	}
}

// Start begins the periodic audit loop and listens for context cancellation.
func (w *CatalogAuditWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting catalog audit worker")

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Catalog audit worker stopped")
			return
		}
	}
}

// AuditSummary counts the outcome of one audit pass.
type AuditSummary struct {
	Audited   int
	Defective int
}

// RunOnce audits every product once.
func (w *CatalogAuditWorker) RunOnce(ctx context.Context) (AuditSummary, error) {
	ids, err := w.catalog.ListProductIDs(ctx)
	if err != nil {
		return AuditSummary{}, err
	}

	var audited, defective atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			report, err := w.catalog.AuditProduct(gctx, id)
			if err != nil {
				if errors.Is(err, utils.ErrProductNotFound) {
					return nil
				}
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Error().Err(err).Int("product_id", id).Msg("Failed to audit product catalog")
				return nil
			}
			audited.Add(1)
			if report.Healthy() {
				return nil
			}
			defective.Add(1)
			log.Warn().
				Int("product_id", id).
				Bool("valid", report.Valid).
				Bool("purchasable", report.Purchasable).
				Strs("defects", report.Defects).
				Msg("Product catalog failed audit")
			w.notifier.NotifyCatalogInvalid(id, report.Err)
			return nil
		})
	}
	err = g.Wait()
	return AuditSummary{Audited: int(audited.Load()), Defective: int(defective.Load())}, err
}

func (w *CatalogAuditWorker) run(ctx context.Context) {
	start := time.Now()
	summary, err := w.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Catalog audit aborted")
		return
	}
	log.Info().
		Int("audited", summary.Audited).
		Int("defective", summary.Defective).
		Dur("duration", time.Since(start)).
		Msg("Catalog audit completed")
}

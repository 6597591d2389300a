package main

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/application/quote"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cotizaciones-api/pkg/config"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

// storage repos y runners de transacción del driver elegido.
type storage struct {
	quoteTx   quote.TxRunner
	archiveTx recycle.TxRunner
	quotes    repository.QuoteRepository
	inventory repository.InventoryRepository
	users     repository.UserRepository
	audit     repository.AuditRepository
	bin       repository.RecycleBinRepository
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.New()
		return &storage{
			quoteTx:   store,
			archiveTx: store,
			quotes:    store.Quotes(),
			inventory: store.Inventory(),
			users:     store.Users(),
			audit:     store.Audit(),
			bin:       store.RecycleBin(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	txRunner := postgres.NewTxRunner(pool)
	return &storage{
		quoteTx:   txRunner,
		archiveTx: txRunner,
		quotes:    postgres.NewQuoteRepository(pool),
		inventory: postgres.NewInventoryRepository(pool),
		users:     postgres.NewUserRepository(pool),
		audit:     postgres.NewAuditRepository(pool),
		bin:       postgres.NewRecycleBinRepository(pool),
		close:     pool.Close,
	}, nil
}

// Package store persists reduced rates into Postgres. The schema is three
// tables: banks and tenors as reference data, bank_rates keyed by bank,
// tenor and rate type.
package store

import (
	"context"
	"fmt"

	_ "embed"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/config"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/model"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

const (
	insertBankSQL  = `INSERT INTO banks (name) VALUES ($1) RETURNING id`
	insertTenorSQL = `INSERT INTO tenors (name, months) VALUES ($1, $2) RETURNING id`
	upsertRateSQL  = `
		INSERT INTO bank_rates (bank_id, tenor_id, rate, rate_type, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (bank_id, tenor_id, rate_type)
		DO UPDATE SET rate = EXCLUDED.rate, updated_at = now()
		RETURNING id, updated_at`
)

// querier is the slice of pgx shared by pgxpool.Pool and pgx.Tx. The row
// helper only ever needs QueryRow because every statement ends in
// RETURNING, so the same helper serves both save policies.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type refCache struct {
	banks  map[string]model.Bank
	tenors map[string]model.Tenor
}

type Postgres struct {
	pool   *pgxpool.Pool
	policy config.UpsertPolicy
	logger *zap.Logger
}

// Open validates the configuration, connects the pool and, when asked,
// applies the embedded schema.
func Open(ctx context.Context, cfg config.DB, logger *zap.Logger) (*Postgres, error) {
	if err := validateDBConfig(cfg); err != nil {
		return nil, err
	}

	pool, err := pgxpool.Connect(ctx, BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	pg := &Postgres{pool: pool, policy: cfg.Policy, logger: logger}
	if cfg.AutoMigrate {
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	logger.Info("database ready", zap.Bool("auto_migrate", cfg.AutoMigrate))
	return pg, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// EnsureSchema applies the embedded DDL. Every statement is idempotent, so
// running it against a provisioned database changes nothing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveRates writes one reduced batch. New banks and tenors are created on
// first sight; rates upsert on (bank_id, tenor_id, rate_type). The continue
// policy skips rows that fail and reports what it saved, the atomic policy
// rolls the whole batch back on the first failure.
func (p *Postgres) SaveRates(ctx context.Context, rates []model.ReducedRate) (int, error) {
	if len(rates) == 0 {
		return 0, nil
	}

	banks, err := p.loadBanks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to preload banks: %w", err)
	}
	tenors, err := p.loadTenors(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to preload tenors: %w", err)
	}
	cache := &refCache{banks: banks, tenors: tenors}

	if p.policy == config.PolicyAtomic {
		return p.saveAtomic(ctx, cache, rates)
	}
	return p.saveContinue(ctx, cache, rates)
}

func (p *Postgres) saveContinue(ctx context.Context, cache *refCache, rates []model.ReducedRate) (int, error) {
	saved := 0
	for _, rate := range rates {
		if ctx.Err() != nil {
			return saved, ctx.Err()
		}
		if err := p.saveRow(ctx, p.pool, cache, rate); err != nil {
			p.logger.Error("failed to save rate, skipping row",
				zap.String("bank", rate.Bank),
				zap.String("tenor", rate.Tenor.Name),
				zap.String("rate_type", string(rate.RateType)),
				zap.Error(err))
			continue
		}
		saved++
	}
	return saved, nil
}

func (p *Postgres) saveAtomic(ctx context.Context, cache *refCache, rates []model.ReducedRate) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op once committed

	for _, rate := range rates {
		if err := p.saveRow(ctx, tx, cache, rate); err != nil {
			return 0, fmt.Errorf("batch rolled back: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return len(rates), nil
}

func (p *Postgres) saveRow(ctx context.Context, q querier, cache *refCache, rate model.ReducedRate) error {
	bank, ok := cache.banks[rate.Bank]
	if !ok {
		bank = model.Bank{Name: rate.Bank}
		if err := q.QueryRow(ctx, insertBankSQL, bank.Name).Scan(&bank.ID); err != nil {
			return fmt.Errorf("failed to create bank %q: %w", bank.Name, err)
		}
		cache.banks[bank.Name] = bank
		p.logger.Info("created bank", zap.String("bank", bank.Name), zap.Int64("id", bank.ID))
	}

	tenor, ok := cache.tenors[rate.Tenor.Name]
	if !ok {
		tenor = model.Tenor{Name: rate.Tenor.Name, Months: rate.Tenor.Months}
		if err := q.QueryRow(ctx, insertTenorSQL, tenor.Name, tenor.Months).Scan(&tenor.ID); err != nil {
			return fmt.Errorf("failed to create tenor %q: %w", tenor.Name, err)
		}
		cache.tenors[tenor.Name] = tenor
		p.logger.Info("created tenor",
			zap.String("tenor", tenor.Name),
			zap.Int("months", tenor.Months),
			zap.Int64("id", tenor.ID))
	} else if tenor.Months != rate.Tenor.Months {
		// the lookup table moved under a stored tenor; flag it, keep writing
		p.logger.Warn("tenor months mismatch between database and lookup table",
			zap.String("tenor", tenor.Name),
			zap.Int("stored", tenor.Months),
			zap.Int("lookup", rate.Tenor.Months))
	}

	saved := model.BankRate{BankID: bank.ID, TenorID: tenor.ID, Rate: rate.Rate, RateType: rate.RateType}
	if err := q.QueryRow(ctx, upsertRateSQL, saved.BankID, saved.TenorID, saved.Rate, string(saved.RateType)).Scan(&saved.ID, &saved.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert rate %s/%s/%s: %w", bank.Name, tenor.Name, rate.RateType, err)
	}
	p.logger.Info("upserted rate",
		zap.String("bank", bank.Name),
		zap.String("tenor", tenor.Name),
		zap.String("rate_type", string(saved.RateType)),
		zap.Float64("rate", saved.Rate),
		zap.Int64("id", saved.ID))
	return nil
}

func (p *Postgres) loadBanks(ctx context.Context) (map[string]model.Bank, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name FROM banks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]model.Bank)
	for rows.Next() {
		var bank model.Bank
		if err := rows.Scan(&bank.ID, &bank.Name); err != nil {
			return nil, err
		}
		out[bank.Name] = bank
	}
	return out, rows.Err()
}

func (p *Postgres) loadTenors(ctx context.Context) (map[string]model.Tenor, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, months FROM tenors`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]model.Tenor)
	for rows.Next() {
		var tenor model.Tenor
		if err := rows.Scan(&tenor.ID, &tenor.Name, &tenor.Months); err != nil {
			return nil, err
		}
		out[tenor.Name] = tenor
	}
	return out, rows.Err()
}

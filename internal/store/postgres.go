package store

import (
	"context"
	"embed"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Migrations holds the schema used by PgSnapshot, rooted at MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

var _ Snapshot = (*PgSnapshot)(nil)

var productColumns = []string{"position", "id", "title", "description", "price", "thumbnail", "code", "stock"}

// PgSnapshot persists the collection into the products table of a PostgreSQL database.
type PgSnapshot struct {
	db *pgxpool.Pool
}

// NewPgSnapshot creates a new snapshot using a PostgreSQL connection pool.
func NewPgSnapshot(dbp *pgxpool.Pool) *PgSnapshot {
	return &PgSnapshot{db: dbp}
}

// Read loads all rows in collection order.
func (p *PgSnapshot) Read(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, title, description, price, thumbnail, code, stock FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query products: %w", perrors.ErrStorage, err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		if errors.Is(err, perrors.ErrCorruptStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to read products: %w", perrors.ErrStorage, err)
	}
	return products, nil
}

// Write replaces every row with the given collection in a single transaction.
func (p *PgSnapshot) Write(ctx context.Context, products []Product) error {
	return p.withTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
			return fmt.Errorf("failed to clear products: %w", err)
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"products"}, productColumns,
			pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
				pr := products[i]
				return []any{i, pr.ID, pr.Title, pr.Description, toNumeric(pr.Price), pr.Thumbnail, pr.Code, toNumeric(pr.Stock)}, nil
			}))
		if err != nil {
			return fmt.Errorf("failed to copy products: %w", err)
		}
		return nil
	})
}

func (p *PgSnapshot) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", perrors.ErrStorage, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w: %w (rollback failed: %v)", perrors.ErrStorage, err, rbErr)
		}
		return fmt.Errorf("%w: %w", perrors.ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", perrors.ErrStorage, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (Product, error) {
	var (
		product Product
		price   pgtype.Numeric
		stock   pgtype.Numeric
	)
	err := row.Scan(&product.ID, &product.Title, &product.Description, &price,
		&product.Thumbnail, &product.Code, &stock)
	if err != nil {
		return Product{}, err
	}
	if product.Price, err = fromNumeric(price); err != nil {
		return Product{}, fmt.Errorf("%w: product %d has a non-finite price", err, product.ID)
	}
	if product.Stock, err = fromNumeric(stock); err != nil {
		return Product{}, fmt.Errorf("%w: product %d has a non-finite stock", err, product.ID)
	}
	return product, nil
}

func fromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, perrors.ErrCorruptStorage
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

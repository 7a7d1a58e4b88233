package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE raised by products_active_name_key.
const uniqueViolation = "23505"

const productColumns = "id, name, description, price, category, stock, active, created_at, updated_at"

// sortColumns maps every sortable field to its column. Anything outside this map never reaches SQL.
var sortColumns = map[model.SortField]string{
	model.SortByID:          "id",
	model.SortByName:        "name",
	model.SortByDescription: "description",
	model.SortByPrice:       "price",
	model.SortByCategory:    "category",
	model.SortByStock:       "stock",
	model.SortByActive:      "active",
	model.SortByCreatedAt:   "created_at",
	model.SortByUpdatedAt:   "updated_at",
}

type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func (p *PgStore) Insert(ctx context.Context, product model.Product) (*model.Product, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, category, stock, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+productColumns,
		product.Name, product.Description, product.Price, product.Category,
		product.Stock, product.Active, product.CreatedAt, product.UpdatedAt)

	created, err := scanProduct(row)
	if err != nil {
		return nil, mapError("insert product", err)
	}
	return &created, nil
}

func (p *PgStore) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, perrors.Storage("find product by id", err)
	}
	return &product, nil
}

func (p *PgStore) FindAll(ctx context.Context) ([]model.Product, error) {
	return p.FindBy(ctx, model.Filter{})
}

func (p *PgStore) FindPage(ctx context.Context, filter model.Filter, page model.PageRequest) ([]model.Product, int64, error) {
	column, ok := sortColumns[page.Sort]
	if !ok {
		return nil, 0, perrors.NewValidationError("sort", "unknown sort field %q", page.Sort)
	}
	direction := "ASC"
	if page.Direction == model.Desc {
		direction = "DESC"
	}
	where, args := buildWhere(filter)

	var products []model.Product
	var total int64

	// Count and slice must see the same snapshot.
	txErr := p.withTransaction(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
			return perrors.Storage("count products", err)
		}
		query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
			productColumns, where, column, direction, len(args)+1, len(args)+2)
		rows, err := tx.Query(ctx, query, append(args, page.Size, page.Offset())...)
		if err != nil {
			return perrors.Storage("find products page", err)
		}
		products, err = collectProducts(rows)
		if err != nil {
			return perrors.Storage("scan products page", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, 0, txErr
	}

	return products, total, nil
}

func (p *PgStore) FindBy(ctx context.Context, filter model.Filter) ([]model.Product, error) {
	where, args := buildWhere(filter)
	rows, err := p.db.Query(ctx, `SELECT `+productColumns+` FROM products`+where+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, perrors.Storage("find products", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, perrors.Storage("scan products", err)
	}
	return products, nil
}

func (p *PgStore) Update(ctx context.Context, id int64, modify func(product *model.Product) error) (*model.Product, error) {
	var updated model.Product

	txErr := p.withTransaction(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
		current, err := scanProduct(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return perrors.ErrProductNotFound
			}
			return perrors.Storage("lock product", err)
		}

		if err := modify(&current); err != nil {
			return err
		}

		row = tx.QueryRow(ctx,
			`UPDATE products
			 SET name = $2, description = $3, price = $4, category = $5, stock = $6, active = $7, updated_at = $8
			 WHERE id = $1
			 RETURNING `+productColumns,
			id, current.Name, current.Description, current.Price, current.Category,
			current.Stock, current.Active, current.UpdatedAt)
		updated, err = scanProduct(row)
		if err != nil {
			return mapError("update product", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &updated, nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	if err := p.db.Ping(ctx); err != nil {
		return perrors.Storage("ping", err)
	}
	return nil
}

func (p *PgStore) withTransaction(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, opts)
	if err != nil {
		return perrors.Storage("begin transaction", err)
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return perrors.Storage("rollback transaction", errors.Join(err, rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}

	return nil
}

// buildWhere renders filter as a WHERE clause with positional arguments.
func buildWhere(filter model.Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ActiveOnly {
		conds = append(conds, "active")
	}
	if filter.Name != "" {
		add("name = $%d", filter.Name)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.NameContains != "" {
		add("strpos(lower(name), lower($%d)) > 0", filter.NameContains)
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if filter.StockBelow != nil {
		add("stock < $%d", *filter.StockBelow)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Product{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// mapError translates a unique violation into ErrNameConflict and anything else into a storage failure.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return perrors.ErrNameConflict
	}
	return perrors.Storage(op, err)
}

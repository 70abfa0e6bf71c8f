package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/repositories"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
)

type OrderRepository struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
	logger logger.Logger
}

func NewOrderRepository(db *sql.DB, getter *trmsql.CtxGetter, logger logger.Logger) (*OrderRepository, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}
	if getter == nil {
		return nil, errors.New("nil dependency: transaction getter")
	}

	return &OrderRepository{db: db, getter: getter, logger: logger}, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

const orderColumns = `
	o.id, o.title, o.subject, o.type, o.pages, o.deadline, o.budget,
	o.minimum_budget, o.status, o.client_id, o.writer_id, o.description,
	o.requirements, o.additional_notes, o.created_at, o.updated_at`

func scanOrder(row rowScanner) (*entities.Order, error) {
	o := new(entities.Order)

	var writerID sql.NullString

	err := row.Scan(
		&o.ID,
		&o.Title,
		&o.Subject,
		&o.Type,
		&o.Pages,
		&o.Deadline,
		&o.Budget,
		&o.MinimumBudget,
		&o.Status,
		&o.ClientID,
		&writerID,
		&o.Description,
		&o.Requirements,
		&o.AdditionalNotes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if writerID.Valid {
		o.WriterID = user.ID(writerID.String)
	}

	return o, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o *entities.Order) error {
	const query = `
		INSERT INTO orders
			(id, title, subject, type, pages, deadline, budget,
			 minimum_budget, status, client_id, description,
			 requirements, additional_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query,
		o.ID,
		o.Title,
		o.Subject,
		o.Type,
		o.Pages,
		o.Deadline,
		o.Budget,
		o.MinimumBudget,
		o.Status,
		o.ClientID,
		o.Description,
		o.Requirements,
		o.AdditionalNotes,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id string) (*entities.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders o WHERE o.id = $1;", orderColumns)

	o, err := scanOrder(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return o, nil
}

// UpdateOrder stamps updated_at with the database clock; that stamp is
// what renders still-open bids unconfirmed.
func (r *OrderRepository) UpdateOrder(ctx context.Context, o *entities.Order) (time.Time, error) {
	const query = `
		UPDATE orders
		SET title = $1, subject = $2, type = $3, pages = $4,
			deadline = $5, budget = $6, description = $7,
			requirements = $8, additional_notes = $9, updated_at = now()
		WHERE id = $10
		RETURNING updated_at;
	`

	var updatedAt time.Time

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query,
		o.Title,
		o.Subject,
		o.Type,
		o.Pages,
		o.Deadline,
		o.Budget,
		o.Description,
		o.Requirements,
		o.AdditionalNotes,
		o.ID,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, errs.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("update order: %w", err)
	}

	return updatedAt, nil
}

func (r *OrderRepository) AssignWriter(ctx context.Context, orderID string, writerID user.ID) error {
	const query = `
		UPDATE orders SET writer_id = $1, status = 'in_progress'
		WHERE id = $2 AND writer_id IS NULL;
	`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, writerID, orderID)
	if err != nil {
		return fmt.Errorf("assign writer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrAlreadyAssigned
	}

	return nil
}

func (r *OrderRepository) SetOrderStatus(ctx context.Context, orderID string, status entities.OrderStatus) error {
	const query = `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2;`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, status, orderID)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *OrderRepository) listOrders(ctx context.Context, conditions []string, args []any, filter params.OrderFilter) ([]*entities.Order, int, error) {
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if filter.Subject != "" {
		args = append(args, "%"+filter.Subject+"%")
		conditions = append(conditions, fmt.Sprintf("o.subject ILIKE $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(o.id ILIKE $%d OR o.title ILIKE $%d OR o.subject ILIKE $%d OR o.description ILIKE $%d)",
			n, n, n, n))
	}
	if filter.MinBudget != nil {
		args = append(args, *filter.MinBudget)
		conditions = append(conditions, fmt.Sprintf("o.budget >= $%d", len(args)))
	}
	if filter.MaxBudget != nil {
		args = append(args, *filter.MaxBudget)
		conditions = append(conditions, fmt.Sprintf("o.budget <= $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int

	countQuery := fmt.Sprintf("SELECT count(*) FROM orders o WHERE %s;", where)

	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM orders o
		WHERE %s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d;`,
		orderColumns, where, len(args)+1, len(args)+2)

	args = append(args, filter.Page.Limit, filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	orders := make([]*entities.Order, 0)

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	// Rows.Err will report the last error encountered by Rows.Scan.
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *OrderRepository) ListClientOrders(ctx context.Context, clientID user.ID, filter params.OrderFilter) ([]*entities.Order, int, error) {
	conditions := []string{"o.client_id = $1"}
	args := []any{clientID}

	return r.listOrders(ctx, conditions, args, filter)
}

func (r *OrderRepository) ListWriterOrders(ctx context.Context, writerID user.ID, filter params.OrderFilter) ([]*entities.Order, int, error) {
	if filter.AssignedOnly {
		conditions := []string{"o.writer_id = $1"}
		args := []any{writerID}
		return r.listOrders(ctx, conditions, args, filter)
	}

	// Marketplace view: unassigned orders without an accepted bid.
	conditions := []string{
		"o.writer_id IS NULL",
		"NOT EXISTS (SELECT 1 FROM bids b WHERE b.order_id = o.id AND b.status = 'accepted')",
	}
	args := []any{}

	return r.listOrders(ctx, conditions, args, filter)
}

func (r *OrderRepository) ListAvailableOrders(ctx context.Context, filter params.OrderFilter) ([]*entities.Order, int, error) {
	conditions := []string{"o.status = 'pending'", "o.writer_id IS NULL"}
	args := []any{}

	return r.listOrders(ctx, conditions, args, filter)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/params"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/repositories"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
)

type PaymentRepository struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
	logger logger.Logger
}

func NewPaymentRepository(db *sql.DB, getter *trmsql.CtxGetter, logger logger.Logger) (*PaymentRepository, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}
	if getter == nil {
		return nil, errors.New("nil dependency: transaction getter")
	}

	return &PaymentRepository{db: db, getter: getter, logger: logger}, nil
}

var _ repositories.PaymentRepository = (*PaymentRepository)(nil)

// GetBalance folds earning rows into the three aggregates in a single
// pass. Missing rows fold to zero, never null.
func (r *PaymentRepository) GetBalance(ctx context.Context, userID user.ID) (*entities.Balance, error) {
	const query = `
		SELECT
			coalesce(sum(amount) FILTER (WHERE status = 'completed'), 0),
			coalesce(sum(amount) FILTER (WHERE status = 'pending'), 0),
			coalesce(sum(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type = 'earning';
	`

	balance := entities.ZeroBalance()

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&balance.Available,
		&balance.Pending,
		&balance.TotalEarned,
	)
	if err != nil {
		return nil, err
	}

	return balance, nil
}

func (r *PaymentRepository) CreateTransaction(ctx context.Context, t *entities.Transaction) error {
	const query = `
		INSERT INTO transactions
			(id, user_id, type, amount, description, status,
			 order_id, payment_method_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, nullif($7, ''), nullif($8, ''), $9);
	`

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.Type,
		t.Amount,
		t.Description,
		t.Status,
		t.OrderID,
		t.PaymentMethodID,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

const transactionColumns = `
	t.id, t.user_id, t.type, t.amount, t.description, t.status,
	coalesce(t.order_id, ''), coalesce(t.payment_method_id, ''), t.created_at`

func scanTransaction(row rowScanner) (*entities.Transaction, error) {
	t := new(entities.Transaction)

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Type,
		&t.Amount,
		&t.Description,
		&t.Status,
		&t.OrderID,
		&t.PaymentMethodID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (r *PaymentRepository) GetWithdrawalForUpdate(ctx context.Context, txnID string) (*entities.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transactions t
		WHERE t.id = $1 AND t.type = 'withdrawal'
		FOR UPDATE;`, transactionColumns)

	t, err := scanTransaction(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, txnID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

func (r *PaymentRepository) SetTransactionStatus(ctx context.Context, txnID string, status entities.TransactionStatus, description string) error {
	const query = `
		UPDATE transactions
		SET status = $1, description = coalesce(nullif($2, ''), description)
		WHERE id = $3;
	`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, status, description, txnID)
	if err != nil {
		return fmt.Errorf("set transaction status: %w", err)
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

func (r *PaymentRepository) listTransactions(ctx context.Context, conditions []string, args []any, filter params.TransactionFilter) ([]*entities.Transaction, int, error) {
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int

	countQuery := fmt.Sprintf("SELECT count(*) FROM transactions t WHERE %s;", where)

	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM transactions t
		WHERE %s
		ORDER BY t.created_at DESC
		LIMIT $%d OFFSET $%d;`,
		transactionColumns, where, len(args)+1, len(args)+2)

	args = append(args, filter.Page.Limit, filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	txns := make([]*entities.Transaction, 0)

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, t)
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

	return txns, total, nil
}

func (r *PaymentRepository) ListTransactions(ctx context.Context, userID user.ID, filter params.TransactionFilter) ([]*entities.Transaction, int, error) {
	conditions := []string{"t.user_id = $1"}
	args := []any{userID}

	return r.listTransactions(ctx, conditions, args, filter)
}

func (r *PaymentRepository) ListWithdrawals(ctx context.Context, userID user.ID, filter params.TransactionFilter) ([]*entities.Transaction, int, error) {
	conditions := []string{"t.user_id = $1", "t.type = 'withdrawal'"}
	args := []any{userID}

	return r.listTransactions(ctx, conditions, args, filter)
}

func (r *PaymentRepository) ListAllWithdrawals(ctx context.Context, filter params.TransactionFilter) ([]*entities.Transaction, int, error) {
	conditions := []string{"t.type = 'withdrawal'"}
	args := []any{}

	return r.listTransactions(ctx, conditions, args, filter)
}

func (r *PaymentRepository) FindPaymentMethod(ctx context.Context, userID user.ID, method, details string) (*entities.PaymentMethod, error) {
	const query = `
		SELECT id, user_id, method, details, is_default, created_at
		FROM payment_methods
		WHERE user_id = $1 AND method = $2 AND details = $3;
	`

	pm := new(entities.PaymentMethod)

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, userID, method, details).
		Scan(&pm.ID, &pm.UserID, &pm.Method, &pm.Details, &pm.IsDefault, &pm.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return pm, nil
}

func (r *PaymentRepository) CreatePaymentMethod(ctx context.Context, pm *entities.PaymentMethod) error {
	const query = `
		INSERT INTO payment_methods (id, user_id, method, details, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query,
		pm.ID, pm.UserID, pm.Method, pm.Details, pm.IsDefault, pm.CreatedAt)
	if err != nil {
		return fmt.Errorf("create payment method: %w", err)
	}

	return nil
}

func (r *PaymentRepository) GetPaymentMethod(ctx context.Context, id string, userID user.ID) (*entities.PaymentMethod, error) {
	const query = `
		SELECT id, user_id, method, details, is_default, created_at
		FROM payment_methods
		WHERE id = $1 AND user_id = $2;
	`

	pm := new(entities.PaymentMethod)

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, id, userID).
		Scan(&pm.ID, &pm.UserID, &pm.Method, &pm.Details, &pm.IsDefault, &pm.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return pm, nil
}

func (r *PaymentRepository) ListPaymentMethods(ctx context.Context, userID user.ID) ([]*entities.PaymentMethod, error) {
	const query = `
		SELECT id, user_id, method, details, is_default, created_at
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	methods := make([]*entities.PaymentMethod, 0)

	for rows.Next() {
		pm := new(entities.PaymentMethod)
		err = rows.Scan(&pm.ID, &pm.UserID, &pm.Method, &pm.Details, &pm.IsDefault, &pm.CreatedAt)
		if err != nil {
			return nil, err
		}
		methods = append(methods, pm)
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return methods, nil
}

func (r *PaymentRepository) ClearDefaultPaymentMethods(ctx context.Context, userID user.ID) error {
	const query = `UPDATE payment_methods SET is_default = false WHERE user_id = $1;`

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("clear default payment methods: %w", err)
	}

	return nil
}

func (r *PaymentRepository) SetDefaultPaymentMethod(ctx context.Context, id string, userID user.ID) error {
	const query = `UPDATE payment_methods SET is_default = true WHERE id = $1 AND user_id = $2;`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("set default payment method: %w", err)
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

func (r *PaymentRepository) UpdatePaymentMethodDetails(ctx context.Context, id string, userID user.ID, details string) error {
	const query = `UPDATE payment_methods SET details = $1 WHERE id = $2 AND user_id = $3;`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, details, id, userID)
	if err != nil {
		return fmt.Errorf("update payment method: %w", err)
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

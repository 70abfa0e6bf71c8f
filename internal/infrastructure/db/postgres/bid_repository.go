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
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type BidRepository struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
	logger logger.Logger
}

func NewBidRepository(db *sql.DB, getter *trmsql.CtxGetter, logger logger.Logger) (*BidRepository, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}
	if getter == nil {
		return nil, errors.New("nil dependency: transaction getter")
	}

	return &BidRepository{db: db, getter: getter, logger: logger}, nil
}

var _ repositories.BidRepository = (*BidRepository)(nil)

const bidWithOrderColumns = `
	b.id, b.order_id, b.user_id, b.amount, b.original_budget, b.message,
	b.status, b.submitted_at, b.response_deadline,
	o.id, o.title, o.subject, o.type, o.pages, o.deadline, o.budget,
	o.minimum_budget, o.status, o.client_id, o.writer_id, o.description,
	o.requirements, o.additional_notes, o.created_at, o.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBidWithOrder(row rowScanner) (*entities.BidWithOrder, error) {
	b := new(entities.Bid)
	o := new(entities.Order)

	var writerID sql.NullString

	err := row.Scan(
		&b.ID,
		&b.OrderID,
		&b.WriterID,
		&b.Amount,
		&b.OriginalBudget,
		&b.Message,
		&b.Status,
		&b.SubmittedAt,
		&b.ResponseDeadline,
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

	return &entities.BidWithOrder{Bid: b, Order: o}, nil
}

func (r *BidRepository) CreateBid(ctx context.Context, bid *entities.Bid) error {
	const query = `
		INSERT INTO bids
			(id, order_id, user_id, amount, original_budget, message,
			 status, submitted_at, response_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query,
		bid.ID,
		bid.OrderID,
		bid.WriterID,
		bid.Amount,
		bid.OriginalBudget,
		bid.Message,
		bid.Status,
		bid.SubmittedAt,
		bid.ResponseDeadline,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errs.ErrDuplicateBid
		}
		return fmt.Errorf("create bid: %w", err)
	}

	return nil
}

func (r *BidRepository) GetWriterBid(ctx context.Context, bidID string, writerID user.ID) (*entities.BidWithOrder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bids b
		JOIN orders o ON o.id = b.order_id
		WHERE b.id = $1 AND b.user_id = $2 AND o.writer_id IS NULL;`,
		bidWithOrderColumns)

	bw, err := scanBidWithOrder(r.db.QueryRowContext(ctx, query, bidID, writerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return bw, nil
}

func (r *BidRepository) GetClientBid(ctx context.Context, bidID string, clientID user.ID) (*entities.BidWithOrder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bids b
		JOIN orders o ON o.id = b.order_id
		WHERE b.id = $1 AND o.client_id = $2;`,
		bidWithOrderColumns)

	bw, err := scanBidWithOrder(r.db.QueryRowContext(ctx, query, bidID, clientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return bw, nil
}

// GetClientBidForUpdate locks both the bid and the order row until the
// ambient transaction ends. All concurrent accept attempts on the same
// order serialize behind this lock.
func (r *BidRepository) GetClientBidForUpdate(ctx context.Context, bidID string, clientID user.ID) (*entities.BidWithOrder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bids b
		JOIN orders o ON o.id = b.order_id
		WHERE b.id = $1 AND o.client_id = $2
		FOR UPDATE OF b, o;`,
		bidWithOrderColumns)

	row := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, bidID, clientID)

	bw, err := scanBidWithOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return bw, nil
}

func (r *BidRepository) HasAcceptedBid(ctx context.Context, orderID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM bids WHERE order_id = $1 AND status = 'accepted');`

	var exists bool

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, orderID).
		Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *BidRepository) HasOtherAcceptedBid(ctx context.Context, orderID, bidID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM bids
			WHERE order_id = $1 AND id <> $2 AND status = 'accepted'
		);
	`

	var exists bool

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, orderID, bidID).
		Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *BidRepository) HasOpenBid(ctx context.Context, orderID string, writerID user.ID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM bids
			WHERE order_id = $1 AND user_id = $2 AND status = 'open'
		);
	`

	var exists bool

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, orderID, writerID).
		Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *BidRepository) UpdateBid(ctx context.Context, bid *entities.Bid) error {
	const query = `
		UPDATE bids
		SET amount = $1, message = $2, submitted_at = $3
		WHERE id = $4;
	`

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query,
		bid.Amount, bid.Message, bid.SubmittedAt, bid.ID)
	if err != nil {
		return fmt.Errorf("update bid: %w", err)
	}

	return nil
}

func (r *BidRepository) UpdateBidStatus(ctx context.Context, bidID string, status entities.BidStatus) error {
	const query = `UPDATE bids SET status = $1 WHERE id = $2;`

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, status, bidID)
	if err != nil {
		var pgErr *pgconn.PgError
		// The one-accepted-bid-per-order index backstops the gate.
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errs.ErrAlreadyAssigned
		}
		return fmt.Errorf("update bid status: %w", err)
	}

	return nil
}

func (r *BidRepository) RejectOtherOpenBids(ctx context.Context, orderID, winnerBidID string) (int64, error) {
	const query = `
		UPDATE bids SET status = 'rejected'
		WHERE order_id = $1 AND id <> $2 AND status IN ('open', 'pending');
	`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, orderID, winnerBidID)
	if err != nil {
		return 0, fmt.Errorf("reject other bids: %w", err)
	}

	return res.RowsAffected()
}

// bidStatusConditions translates a status filter into SQL, reproducing
// the derived-status logic server-side for the unconfirmed view and
// the declined alias.
func bidStatusConditions(status string, args *[]any) string {
	switch status {
	case "":
		return ""
	case string(entities.BidUnconfirmed):
		return `o.updated_at IS NOT NULL
			AND o.updated_at > b.submitted_at
			AND b.status NOT IN ('accepted', 'rejected', 'cancelled')`
	case "declined":
		return "b.status = 'rejected'"
	default:
		*args = append(*args, status)
		return fmt.Sprintf("b.status = $%d", len(*args))
	}
}

func (r *BidRepository) listBids(ctx context.Context, conditions []string, args []any, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	if cond := bidStatusConditions(filter.Status, &args); cond != "" {
		conditions = append(conditions, cond)
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("b.submitted_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("b.submitted_at <= $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int

	countQuery := fmt.Sprintf(`
		SELECT count(*) FROM bids b
		JOIN orders o ON o.id = b.order_id
		WHERE %s;`, where)

	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM bids b
		JOIN orders o ON o.id = b.order_id
		WHERE %s
		ORDER BY b.submitted_at DESC
		LIMIT $%d OFFSET $%d;`,
		bidWithOrderColumns, where, len(args)+1, len(args)+2)

	args = append(args, filter.Page.Limit, filter.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	bids := make([]*entities.BidWithOrder, 0)

	for rows.Next() {
		bw, err := scanBidWithOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		bids = append(bids, bw)
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

	return bids, total, nil
}

func (r *BidRepository) ListWriterBids(ctx context.Context, writerID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	conditions := []string{"b.user_id = $1", "o.writer_id IS NULL"}
	args := []any{writerID}

	return r.listBids(ctx, conditions, args, filter)
}

func (r *BidRepository) ListClientBids(ctx context.Context, clientID user.ID, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	// Cancelled bids are hidden; bids on assigned orders are hidden
	// unless they are the accepted one.
	conditions := []string{
		"o.client_id = $1",
		"b.status <> 'cancelled'",
		"(o.writer_id IS NULL OR b.status = 'accepted')",
	}
	args := []any{clientID}

	return r.listBids(ctx, conditions, args, filter)
}

func (r *BidRepository) ListOrderBids(ctx context.Context, orderID string, filter params.BidFilter) ([]*entities.BidWithOrder, int, error) {
	conditions := []string{
		"b.order_id = $1",
		"b.status <> 'cancelled'",
		"(o.writer_id IS NULL OR b.status = 'accepted')",
	}
	args := []any{orderID}

	return r.listBids(ctx, conditions, args, filter)
}

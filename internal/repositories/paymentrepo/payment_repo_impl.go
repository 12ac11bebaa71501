package paymentrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/sqlc-dev/pqtype"

	"github.com/frogstop/payments/internal/domain"
	"github.com/frogstop/payments/internal/infrastructure/database"
)

type paymentRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) IPaymentRepository {
	return &paymentRepository{
		db:     db.Db,
		logger: logger.With().Str("component", "payment_repo").Logger(),
	}
}

const paymentColumns = `payment_id, account_id, deposit_address, blockchain, token_symbol,
	amount, currency, status, transaction_hash, withdrawal_status, details,
	created_at, updated_at, expires_at`

func (r *paymentRepository) Create(ctx context.Context, record *domain.PaymentRecord) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		record.PaymentID,
		record.AccountID,
		record.DepositAddress,
		record.Blockchain,
		record.TokenSymbol,
		record.Amount,
		record.Currency,
		string(record.Status),
		sql.NullString{String: record.TransactionHash, Valid: record.TransactionHash != ""},
		sql.NullString{String: string(record.WithdrawalStatus), Valid: record.WithdrawalStatus != ""},
		pqtype.NullRawMessage{RawMessage: record.Details, Valid: record.Details != nil},
		record.CreatedAt,
		record.UpdatedAt,
		record.ExpiresAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_id", record.PaymentID).Msg("Failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, paymentID string) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`

	record, err := scanPayment(r.db.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_id", paymentID).Msg("Failed to get payment")
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return record, nil
}

func (r *paymentRepository) Transition(ctx context.Context, params TransitionParams) (bool, error) {
	query := `UPDATE payments
		SET status = $2,
			transaction_hash = COALESCE(NULLIF($3, ''), transaction_hash),
			withdrawal_status = COALESCE(NULLIF($4, ''), withdrawal_status),
			updated_at = $5
		WHERE payment_id = $1 AND status = ANY($6)`

	from := make([]string, 0, len(params.FromStatuses))
	for _, s := range params.FromStatuses {
		from = append(from, string(s))
	}

	result, err := r.db.ExecContext(ctx, query,
		params.PaymentID,
		string(params.Status),
		params.TransactionHash,
		string(params.WithdrawalStatus),
		time.Now().UTC(),
		pq.Array(from),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_id", params.PaymentID).Msg("Failed to transition payment")
		return false, fmt.Errorf("failed to transition payment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// Distinguish a lost precondition from a phantom id.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE payment_id = $1)`, params.PaymentID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payment existence: %w", err)
	}
	if !exists {
		return false, domain.ErrPaymentNotFound
	}

	return false, nil
}

func (r *paymentRepository) SetWithdrawalStatus(ctx context.Context, paymentID string, status domain.WithdrawalStatus) error {
	query := `UPDATE payments SET withdrawal_status = $2, updated_at = $3 WHERE payment_id = $1`

	result, err := r.db.ExecContext(ctx, query, paymentID, string(status), time.Now().UTC())
	if err != nil {
		r.logger.Error().Err(err).Str("payment_id", paymentID).Msg("Failed to set withdrawal status")
		return fmt.Errorf("failed to set withdrawal status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

func (r *paymentRepository) FindOldestPendingByAmount(ctx context.Context, amount string) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE status = $1 AND amount = $2
		ORDER BY created_at ASC, payment_id ASC
		LIMIT 1`

	record, err := scanPayment(r.db.QueryRowContext(ctx, query, string(domain.StatusPending), amount))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("amount", amount).Msg("Failed to find pending payment by amount")
		return nil, fmt.Errorf("failed to find pending payment by amount: %w", err)
	}

	return record, nil
}

func (r *paymentRepository) List(ctx context.Context) ([]*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC, payment_id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to list payments")
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var records []*domain.PaymentRecord
	for rows.Next() {
		record, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment rows: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*domain.PaymentRecord, error) {
	var (
		record           domain.PaymentRecord
		status           string
		transactionHash  sql.NullString
		withdrawalStatus sql.NullString
		details          pqtype.NullRawMessage
	)

	err := row.Scan(
		&record.PaymentID,
		&record.AccountID,
		&record.DepositAddress,
		&record.Blockchain,
		&record.TokenSymbol,
		&record.Amount,
		&record.Currency,
		&status,
		&transactionHash,
		&withdrawalStatus,
		&details,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	record.Status = domain.PaymentStatus(status)
	record.TransactionHash = transactionHash.String
	record.WithdrawalStatus = domain.WithdrawalStatus(withdrawalStatus.String)
	if details.Valid {
		record.Details = details.RawMessage
	}

	return &record, nil
}

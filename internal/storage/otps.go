package storage

import (
	"context"
	"database/sql"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
)

const otpColumns = `id, order_id, code, status, expires_at, verified_at, attempts, max_attempts, created_at`

func scanOTP(row scanner) (*domain.OTP, error) {
	var otp domain.OTP
	var verifiedAt sql.NullTime
	if err := row.Scan(&otp.ID, &otp.OrderID, &otp.Code, &otp.Status, &otp.ExpiresAt,
		&verifiedAt, &otp.Attempts, &otp.MaxAttempts, &otp.CreatedAt); err != nil {
		return nil, err
	}
	otp.VerifiedAt = timePtr(verifiedAt)
	return &otp, nil
}

func insertOTP(ctx context.Context, db execer, otp *domain.OTP) error {
	if otp.ID == uuid.Nil {
		otp.ID = uuid.New()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO otps (id, order_id, code, status, expires_at, attempts, max_attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		otp.ID, otp.OrderID, otp.Code, otp.Status, otp.ExpiresAt, otp.Attempts, otp.MaxAttempts, otp.CreatedAt)
	return err
}

// ReplaceActive revokes whatever code is active for the order and stores
// the new one in the same transaction.
func (r *PostgresRepository) ReplaceActive(ctx context.Context, otp *domain.OTP) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE otps SET status = 'revoked' WHERE order_id = $1 AND status = 'active'`, otp.OrderID); err != nil {
			return err
		}
		return insertOTP(ctx, tx, otp)
	})
	return translate(err, "otp", "order_id", otp.OrderID.String())
}

func (r *PostgresRepository) GetActiveOTP(ctx context.Context, orderID uuid.UUID) (*domain.OTP, error) {
	otp, err := scanOTP(r.DB.QueryRowContext(ctx,
		`SELECT `+otpColumns+` FROM otps WHERE order_id = $1 AND status = 'active'`, orderID))
	if err != nil {
		return nil, translate(err, "otp", "order_id", orderID.String())
	}
	return otp, nil
}

func (r *PostgresRepository) FindActiveOTP(ctx context.Context, orderID uuid.UUID, code string) (*domain.OTP, error) {
	otp, err := scanOTP(r.DB.QueryRowContext(ctx, `
		SELECT `+otpColumns+` FROM otps
		WHERE order_id = $1 AND code = $2 AND status = 'active'`, orderID, code))
	if err != nil {
		return nil, translate(err, "otp", "order_id", orderID.String())
	}
	return otp, nil
}

// FindOTPByCode returns the most recent code row for the order regardless
// of status.
func (r *PostgresRepository) FindOTPByCode(ctx context.Context, orderID uuid.UUID, code string) (*domain.OTP, error) {
	otp, err := scanOTP(r.DB.QueryRowContext(ctx, `
		SELECT `+otpColumns+` FROM otps
		WHERE order_id = $1 AND code = $2
		ORDER BY created_at DESC LIMIT 1`, orderID, code))
	if err != nil {
		return nil, translate(err, "otp", "order_id", orderID.String())
	}
	return otp, nil
}

// MarkOTPUsed flips an active code to used. False means another request
// consumed or revoked it first.
func (r *PostgresRepository) MarkOTPUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE otps SET status = 'used', verified_at = $2
		WHERE id = $1 AND status = 'active'`, id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostgresRepository) MarkOTPExpired(ctx context.Context, id uuid.UUID) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE otps SET status = 'expired' WHERE id = $1 AND status = 'active'`, id)
	return err
}

// RecordFailedAttempt counts a wrong code against the active OTP and revokes
// it once the attempt budget is spent.
func (r *PostgresRepository) RecordFailedAttempt(ctx context.Context, orderID uuid.UUID) (*domain.OTP, error) {
	otp, err := scanOTP(r.DB.QueryRowContext(ctx, `
		UPDATE otps
		SET attempts = attempts + 1,
			status = CASE WHEN attempts + 1 >= max_attempts THEN 'revoked' ELSE status END
		WHERE order_id = $1 AND status = 'active'
		RETURNING `+otpColumns, orderID))
	if err != nil {
		return nil, translate(err, "otp", "order_id", orderID.String())
	}
	return otp, nil
}

func (r *PostgresRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE otps SET status = 'expired' WHERE status = 'active' AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

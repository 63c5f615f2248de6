package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
)

const (
	DefaultOTPTTL         = 15 * time.Minute
	DefaultOTPMaxAttempts = 5
	otpDigits             = 6
)

type VerifyResult struct {
	Valid   bool        `json:"valid"`
	Message string      `json:"message"`
	OTP     *domain.OTP `json:"-"`
	Err     error       `json:"-"`
}

type OTPService struct {
	repo   OTPRepository
	qr     QRGenerator
	logger *slog.Logger

	TTL  time.Duration
	Now  func() time.Time
	Rand io.Reader
}

func NewOTPService(repo OTPRepository, qr QRGenerator, logger *slog.Logger) *OTPService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OTPService{
		repo:   repo,
		qr:     qr,
		logger: logger.With("module", "otp"),
		TTL:    DefaultOTPTTL,
		Now:    func() time.Time { return time.Now().UTC() },
		Rand:   rand.Reader,
	}
}

func (s *OTPService) code() (string, error) {
	digits := make([]byte, otpDigits)
	ten := big.NewInt(10)
	for i := range digits {
		n, err := rand.Int(s.Rand, ten)
		if err != nil {
			return "", fmt.Errorf("draw otp digit: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// Issue builds a fresh active code without persisting it. Order creation
// stores it inside its own transaction.
func (s *OTPService) Issue(orderID uuid.UUID, now time.Time, ttl time.Duration) (*domain.OTP, error) {
	if ttl <= 0 {
		ttl = s.TTL
	}
	code, err := s.code()
	if err != nil {
		return nil, err
	}
	return &domain.OTP{
		ID:          uuid.New(),
		OrderID:     orderID,
		Code:        code,
		Status:      domain.OTPActive,
		ExpiresAt:   now.Add(ttl),
		MaxAttempts: DefaultOTPMaxAttempts,
		CreatedAt:   now,
	}, nil
}

// Generate revokes the order's active code, if any, and stores a new one.
func (s *OTPService) Generate(ctx context.Context, orderID uuid.UUID, ttl time.Duration) (*domain.OTP, error) {
	otp, err := s.Issue(orderID, s.Now(), ttl)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceActive(ctx, otp); err != nil {
		return nil, fmt.Errorf("store otp for order %s: %w", orderID, err)
	}
	s.logger.Info("otp_generated", "order_id", orderID, "expires_at", otp.ExpiresAt)
	return otp, nil
}

func failed(err error) VerifyResult {
	return VerifyResult{Message: err.Error(), Err: err}
}

func (s *OTPService) Verify(ctx context.Context, orderID uuid.UUID, code string) VerifyResult {
	now := s.Now()

	otp, err := s.repo.FindActiveOTP(ctx, orderID, code)
	switch {
	case err == nil:
		if otp.IsExpired(now) {
			if err := s.repo.MarkOTPExpired(ctx, otp.ID); err != nil {
				return failed(err)
			}
			return failed(domain.ErrOTPExpired)
		}
		ok, err := s.repo.MarkOTPUsed(ctx, otp.ID, now)
		if err != nil {
			return failed(err)
		}
		if !ok {
			return failed(domain.ErrOTPUsed)
		}
		otp.Status = domain.OTPUsed
		otp.VerifiedAt = &now
		s.logger.Info("otp_verified", "order_id", orderID)
		return VerifyResult{Valid: true, Message: "OTP verified successfully", OTP: otp}
	case !domain.IsNotFound(err):
		return failed(err)
	}

	previous, err := s.repo.FindOTPByCode(ctx, orderID, code)
	switch {
	case err == nil:
		if previous.Status == domain.OTPUsed {
			return failed(domain.ErrOTPUsed)
		}
		return failed(domain.ErrOTPInvalid)
	case !domain.IsNotFound(err):
		return failed(err)
	}

	active, err := s.repo.RecordFailedAttempt(ctx, orderID)
	if err != nil && !domain.IsNotFound(err) {
		return failed(err)
	}
	if active != nil && active.Status == domain.OTPRevoked {
		s.logger.Warn("otp_revoked", "order_id", orderID, "attempts", active.Attempts)
	}
	return failed(domain.ErrOTPInvalid)
}

func (s *OTPService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireStale(ctx, s.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("otp_cleanup", "expired", n)
	}
	return n, nil
}

// Active returns the order's current code. A code past its expiry is
// reported as expired even before the cleanup job flips its status.
func (s *OTPService) Active(ctx context.Context, orderID uuid.UUID) (*domain.OTP, error) {
	otp, err := s.repo.GetActiveOTP(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if otp.IsExpired(s.Now()) {
		return nil, domain.ErrOTPExpired
	}
	return otp, nil
}

// PickupQR renders the verification link of the order's active code.
func (s *OTPService) PickupQR(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	otp, err := s.repo.GetActiveOTP(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if otp.IsExpired(s.Now()) {
		return nil, domain.ErrOTPExpired
	}
	if s.qr == nil {
		return nil, errors.New("qr generator not configured")
	}
	return s.qr.Generate(orderID, otp.Code)
}

package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"dineswift-local/internal/domain"
	"dineswift-local/internal/mocks"
	"dineswift-local/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOTPService(repo *mocks.OTPRepository) *service.OTPService {
	svc := service.NewOTPService(repo, service.DefaultQRGenerator{BaseURL: "http://node.local"}, quietLogger())
	svc.Now = clock
	return svc
}

func activeOTP(orderID uuid.UUID, code string, expiresAt time.Time) *domain.OTP {
	return &domain.OTP{
		ID:          uuid.New(),
		OrderID:     orderID,
		Code:        code,
		Status:      domain.OTPActive,
		ExpiresAt:   expiresAt,
		MaxAttempts: service.DefaultOTPMaxAttempts,
		CreatedAt:   fixedNow.Add(-time.Minute),
	}
}

func TestOTPService_Generate(t *testing.T) {
	orderID := uuid.New()
	repo := mocks.NewOTPRepository(t)
	var stored []*domain.OTP
	repo.On("ReplaceActive", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = append(stored, args.Get(1).(*domain.OTP)) }).
		Return(nil).Twice()

	svc := newOTPService(repo)
	first, err := svc.Generate(context.Background(), orderID, 0)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), orderID, 5*time.Minute)
	require.NoError(t, err)

	require.Len(t, stored, 2)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, fixedNow.Add(service.DefaultOTPTTL), first.ExpiresAt)
	assert.Equal(t, fixedNow.Add(5*time.Minute), second.ExpiresAt)
	for _, otp := range stored {
		assert.Equal(t, domain.OTPActive, otp.Status)
		assert.Len(t, otp.Code, 6)
		assert.Equal(t, service.DefaultOTPMaxAttempts, otp.MaxAttempts)
	}
}

func TestOTPService_Generate_KeepsLeadingZeros(t *testing.T) {
	repo := mocks.NewOTPRepository(t)
	repo.On("ReplaceActive", mock.Anything, mock.Anything).Return(nil)

	svc := newOTPService(repo)
	svc.Rand = bytes.NewReader(make([]byte, 64))
	otp, err := svc.Generate(context.Background(), uuid.New(), 0)

	require.NoError(t, err)
	assert.Equal(t, "000000", otp.Code)
}

func TestOTPService_Generate_StoreFails(t *testing.T) {
	repo := mocks.NewOTPRepository(t)
	repo.On("ReplaceActive", mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

	_, err := newOTPService(repo).Generate(context.Background(), uuid.New(), 0)

	assert.ErrorContains(t, err, "deadlock detected")
}

func TestOTPService_Verify(t *testing.T) {
	orderID := uuid.New()
	fresh := fixedNow.Add(10 * time.Minute)

	tests := []struct {
		name        string
		setupMock   func(*mocks.OTPRepository)
		expectValid bool
		expectedErr error
	}{
		{
			name: "correct code",
			setupMock: func(repo *mocks.OTPRepository) {
				otp := activeOTP(orderID, "123456", fresh)
				repo.On("FindActiveOTP", mock.Anything, orderID, "123456").Return(otp, nil)
				repo.On("MarkOTPUsed", mock.Anything, otp.ID, fixedNow).Return(true, nil)
			},
			expectValid: true,
		},
		{
			name: "same code a second time",
			setupMock: func(repo *mocks.OTPRepository) {
				used := activeOTP(orderID, "123456", fresh)
				used.Status = domain.OTPUsed
				repo.On("FindActiveOTP", mock.Anything, orderID, "123456").Return(nil, notFound("otp"))
				repo.On("FindOTPByCode", mock.Anything, orderID, "123456").Return(used, nil)
			},
			expectedErr: domain.ErrOTPUsed,
		},
		{
			name: "concurrent verify loses",
			setupMock: func(repo *mocks.OTPRepository) {
				otp := activeOTP(orderID, "123456", fresh)
				repo.On("FindActiveOTP", mock.Anything, orderID, "123456").Return(otp, nil)
				repo.On("MarkOTPUsed", mock.Anything, otp.ID, fixedNow).Return(false, nil)
			},
			expectedErr: domain.ErrOTPUsed,
		},
		{
			name: "expired code is flipped",
			setupMock: func(repo *mocks.OTPRepository) {
				otp := activeOTP(orderID, "123456", fixedNow.Add(-time.Second))
				repo.On("FindActiveOTP", mock.Anything, orderID, "123456").Return(otp, nil)
				repo.On("MarkOTPExpired", mock.Anything, otp.ID).Return(nil)
			},
			expectedErr: domain.ErrOTPExpired,
		},
		{
			name: "revoked code",
			setupMock: func(repo *mocks.OTPRepository) {
				revoked := activeOTP(orderID, "123456", fresh)
				revoked.Status = domain.OTPRevoked
				repo.On("FindActiveOTP", mock.Anything, orderID, "123456").Return(nil, notFound("otp"))
				repo.On("FindOTPByCode", mock.Anything, orderID, "123456").Return(revoked, nil)
			},
			expectedErr: domain.ErrOTPInvalid,
		},
		{
			name: "wrong code counts an attempt",
			setupMock: func(repo *mocks.OTPRepository) {
				active := activeOTP(orderID, "654321", fresh)
				active.Attempts = 1
				repo.On("FindActiveOTP", mock.Anything, orderID, "123456").Return(nil, notFound("otp"))
				repo.On("FindOTPByCode", mock.Anything, orderID, "123456").Return(nil, notFound("otp"))
				repo.On("RecordFailedAttempt", mock.Anything, orderID).Return(active, nil)
			},
			expectedErr: domain.ErrOTPInvalid,
		},
		{
			name: "last wrong attempt revokes",
			setupMock: func(repo *mocks.OTPRepository) {
				revoked := activeOTP(orderID, "654321", fresh)
				revoked.Attempts = 5
				revoked.Status = domain.OTPRevoked
				repo.On("FindActiveOTP", mock.Anything, orderID, "123456").Return(nil, notFound("otp"))
				repo.On("FindOTPByCode", mock.Anything, orderID, "123456").Return(nil, notFound("otp"))
				repo.On("RecordFailedAttempt", mock.Anything, orderID).Return(revoked, nil)
			},
			expectedErr: domain.ErrOTPInvalid,
		},
		{
			name: "no active code at all",
			setupMock: func(repo *mocks.OTPRepository) {
				repo.On("FindActiveOTP", mock.Anything, orderID, "123456").Return(nil, notFound("otp"))
				repo.On("FindOTPByCode", mock.Anything, orderID, "123456").Return(nil, notFound("otp"))
				repo.On("RecordFailedAttempt", mock.Anything, orderID).Return(nil, notFound("otp"))
			},
			expectedErr: domain.ErrOTPInvalid,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := mocks.NewOTPRepository(t)
			testCase.setupMock(repo)

			result := newOTPService(repo).Verify(context.Background(), orderID, "123456")

			assert.Equal(t, testCase.expectValid, result.Valid)
			if testCase.expectValid {
				require.NoError(t, result.Err)
				require.NotNil(t, result.OTP.VerifiedAt)
				assert.Equal(t, fixedNow, *result.OTP.VerifiedAt)
				return
			}
			assert.ErrorIs(t, result.Err, testCase.expectedErr)
			assert.Equal(t, testCase.expectedErr.Error(), result.Message)
		})
	}
}

func TestOTPService_CleanupExpired(t *testing.T) {
	repo := mocks.NewOTPRepository(t)
	repo.On("ExpireStale", mock.Anything, fixedNow).Return(int64(3), nil)

	n, err := newOTPService(repo).CleanupExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestOTPService_PickupQR(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name      string
		otp       *domain.OTP
		err       error
		expectPNG bool
		expected  error
	}{
		{name: "active code", otp: activeOTP(orderID, "042042", fixedNow.Add(time.Minute)), expectPNG: true},
		{name: "expired code", otp: activeOTP(orderID, "042042", fixedNow.Add(-time.Minute)), expected: domain.ErrOTPExpired},
		{name: "no code", err: notFound("otp")},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := mocks.NewOTPRepository(t)
			repo.On("GetActiveOTP", mock.Anything, orderID).Return(testCase.otp, testCase.err)

			png, err := newOTPService(repo).PickupQR(context.Background(), orderID)

			switch {
			case testCase.expectPNG:
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
			case testCase.expected != nil:
				assert.ErrorIs(t, err, testCase.expected)
			default:
				assert.True(t, domain.IsNotFound(err))
			}
		})
	}
}

func TestOTPService_Active(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name     string
		otp      *domain.OTP
		err      error
		expected error
	}{
		{name: "live code", otp: activeOTP(orderID, "007007", fixedNow.Add(time.Minute))},
		{name: "expired code", otp: activeOTP(orderID, "007007", fixedNow.Add(-time.Second)), expected: domain.ErrOTPExpired},
		{name: "no code", err: notFound("otp"), expected: notFound("otp")},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := mocks.NewOTPRepository(t)
			repo.On("GetActiveOTP", mock.Anything, orderID).Return(testCase.otp, testCase.err)

			otp, err := newOTPService(repo).Active(context.Background(), orderID)

			if testCase.expected != nil {
				assert.Error(t, err)
				assert.Nil(t, otp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "007007", otp.Code)
		})
	}
}

func TestDefaultQRGenerator_Link(t *testing.T) {
	orderID := uuid.MustParse("7d1f4a3e-2b6c-4e8f-9a0b-1c2d3e4f5a6b")
	link := service.DefaultQRGenerator{BaseURL: "http://node.local"}.Link(orderID, "000123")
	assert.Equal(t, "http://node.local/pickup/verify?order_id=7d1f4a3e-2b6c-4e8f-9a0b-1c2d3e4f5a6b&code=000123", link)
}

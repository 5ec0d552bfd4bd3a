package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New("TXN_001", "Amount must be greater than zero", http.StatusBadRequest)
	assert.Equal(t, "[TXN_001] Amount must be greater than zero", err.Error())
}

func TestAppError_ErrorWithWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	err := ErrNodeUnavailable(inner)
	assert.Contains(t, err.Error(), "WAL_001")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := ErrWalletProvisioningFailed(inner)
	assert.ErrorIs(t, err, inner)
}

func TestAppError_ErrorsAs(t *testing.T) {
	var appErr *AppError
	wrapped := fmt.Errorf("handling transfer: %w", ErrSelfTransfer())
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, "TXN_002", appErr.Code)
}

func TestTransferRejected_CarriesReason(t *testing.T) {
	err := ErrTransferRejected("Insufficient funds")
	assert.Equal(t, "WAL_002", err.Code)
	assert.Contains(t, err.Message, "Insufficient funds")
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
}

func TestValidation_OwnCode(t *testing.T) {
	err := Validation("unknown transaction type")
	assert.Equal(t, "VAL_001", err.Code)
	assert.NotEqual(t, ErrInvalidAmount().Code, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"node unavailable", ErrNodeUnavailable(nil), http.StatusServiceUnavailable},
		{"provisioning failed", ErrWalletProvisioningFailed(nil), http.StatusBadGateway},
		{"address missing", ErrAddressNotProvisioned("receiver"), http.StatusConflict},
		{"bad address", ErrInvalidReceiverAddress("xyz"), http.StatusBadRequest},
		{"indeterminate", ErrTransferIndeterminate(nil), http.StatusAccepted},
		{"invalid amount", ErrInvalidAmount(), http.StatusBadRequest},
		{"self transfer", ErrSelfTransfer(), http.StatusBadRequest},
		{"not found", ErrNotFound("campaign"), http.StatusNotFound},
		{"not authorized", ErrNotAuthorized(), http.StatusForbidden},
		{"bad credentials", ErrInvalidCredentials(), http.StatusUnauthorized},
		{"email exists", ErrEmailExists(), http.StatusConflict},
		{"rate limited", ErrRateLimitExceeded(), http.StatusTooManyRequests},
		{"internal", InternalError(errors.New("x")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.HTTPStatus)
		})
	}
}

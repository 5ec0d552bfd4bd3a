package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet node & transfers (WAL) ----

// ErrNodeUnavailable marks a transport-level failure talking to the wallet
// node (connection refused, timeout outside a send). Retryable by the caller.
func ErrNodeUnavailable(err error) *AppError {
	return Wrap("WAL_001", "Wallet node unavailable", http.StatusServiceUnavailable, err)
}

// ErrTransferRejected carries the node's own reason for declining a send.
// Not retryable as-is.
func ErrTransferRejected(reason string) *AppError {
	return New("WAL_002", fmt.Sprintf("Transfer rejected: %s", reason), http.StatusUnprocessableEntity)
}

func ErrWalletProvisioningFailed(err error) *AppError {
	return Wrap("WAL_003", "Could not provision custodial wallet", http.StatusBadGateway, err)
}

func ErrAddressNotProvisioned(who string) *AppError {
	return New("WAL_004", fmt.Sprintf("%s has no receiving address provisioned", who), http.StatusConflict)
}

func ErrInvalidReceiverAddress(addr string) *AppError {
	return New("WAL_005", fmt.Sprintf("Receiver address %q is not valid for the configured network", addr), http.StatusBadRequest)
}

// ErrTransferIndeterminate marks a send whose outcome is unknown (timeout
// mid-call). The funds may or may not have moved; never retried blindly.
func ErrTransferIndeterminate(err error) *AppError {
	return Wrap("WAL_006", "Transfer outcome indeterminate, pending reconciliation", http.StatusAccepted, err)
}

// ---- Transactions & ledger (TXN) ----

func ErrInvalidAmount() *AppError {
	return New("TXN_001", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrSelfTransfer() *AppError {
	return New("TXN_002", "Sender and receiver must differ", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("TXN_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrNotAuthorized() *AppError {
	return New("TXN_004", "Not a party to this transaction", http.StatusForbidden)
}

func ErrRequestResolved() *AppError {
	return New("TXN_005", "Money request is already resolved", http.StatusConflict)
}

func ErrGoalBelowCollected() *AppError {
	return New("TXN_006", "Goal amount cannot be below the collected total", http.StatusBadRequest)
}

func ErrDuplicateContact() *AppError {
	return New("TXN_007", "Contact already exists", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic input validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

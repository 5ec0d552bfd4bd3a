package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paybit/internal/adapter/http/dto"
	"paybit/internal/adapter/http/middleware"
	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/internal/core/ports/mocks"
	"paybit/pkg/apperror"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func btc(t *testing.T, v float64) btcutil.Amount {
	t.Helper()
	amt, err := btcutil.NewAmount(v)
	require.NoError(t, err)
	return amt
}

func jsonRequest(t *testing.T, method, target string, payload any) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, body)
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func asUser(c *gin.Context, userID string) {
	c.Set(middleware.CtxUserID, userID)
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Register(gomock.Any(), "Alice Nguyen", "alice@example.com", "password123").
		Return(&ports.AuthResult{
			User:      &domain.User{ID: "user-a", UID: "a1b2c3d4", Fullname: "Alice Nguyen", Email: "alice@example.com"},
			Token:     "jwt-token-123",
			ExpiresAt: expiry,
		}, nil)

	w, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Fullname: "Alice Nguyen",
		Email:    "alice@example.com",
		Password: "password123",
	})

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "jwt-token-123", data["token"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_EmailExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrEmailExists())

	w, c := jsonRequest(t, http.MethodPost, "/", dto.RegisterRequest{
		Fullname: "Alice",
		Email:    "taken@example.com",
		Password: "password123",
	})

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "alice@example.com", "password123").
		Return(&ports.AuthResult{
			User:      &domain.User{ID: "user-a", Email: "alice@example.com"},
			Token:     "jwt-token-123",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}, nil)

	w, c := jsonRequest(t, http.MethodPost, "/", dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "jwt-token-123", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "alice@example.com", "wrong").
		Return(nil, apperror.ErrInvalidCredentials())

	w, c := jsonRequest(t, http.MethodPost, "/", dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Transfer Handler Tests ---

func TestSend_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTransfer := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockTransfer)

	mockTransfer.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
			assert.Equal(t, "user-a", req.SenderID)
			assert.Equal(t, "user-b", req.ReceiverID)
			assert.Equal(t, btc(t, 0.5), req.Amount)
			assert.Equal(t, domain.TransactionTypeTransfer, req.Type)
			return &ports.TransferResult{
				Transaction: &domain.Transaction{
					ID:           "tx-1",
					FromUserID:   "user-a",
					ToUserID:     "user-b",
					SenderName:   "Alice",
					ReceiverName: "Bob",
					Amount:       req.Amount,
					Type:         req.Type,
					Status:       domain.TransactionStatusCompleted,
					CreatedAt:    time.Now(),
				},
				NodeTxID: "node-tx-1",
			}, nil
		})

	w, c := jsonRequest(t, http.MethodPost, "/api/v1/transfers", dto.TransferRequest{
		ReceiverID: "user-b",
		Amount:     0.5,
	})
	asUser(c, "user-a")

	h.Send(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "sent", data["direction"])
	assert.Equal(t, "Bob", data["counterparty_name"])
	assert.Equal(t, 0.5, data["amount"])
}

func TestSend_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTransfer := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockTransfer)

	mockTransfer.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrTransferRejected("Insufficient funds"))

	w, c := jsonRequest(t, http.MethodPost, "/", dto.TransferRequest{
		ReceiverID: "user-b",
		Amount:     9999,
	})
	asUser(c, "user-a")

	h.Send(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSend_MissingAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewTransferHandler(mocks.NewMockTransferService(ctrl))

	w, c := jsonRequest(t, http.MethodPost, "/", map[string]any{"receiver_id": "user-b"})
	asUser(c, "user-a")

	h.Send(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Transaction Handler Tests ---

func TestHistory_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	mockLedger.EXPECT().History(gomock.Any(), "user-a", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, params ports.HistoryParams) (*ports.HistoryPage, error) {
			assert.Equal(t, "sent", params.Direction)
			assert.Equal(t, 5, params.Limit)
			require.NotNil(t, params.MinAmount)
			assert.Equal(t, btc(t, 0.1), *params.MinAmount)
			return &ports.HistoryPage{
				Transactions: []domain.TransactionView{{ID: "tx-1", Direction: domain.DirectionSent}},
				Total:        1,
				Page:         1,
				Limit:        5,
				Pages:        1,
			}, nil
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?direction=sent&limit=5&min_amount=0.1", nil)
	asUser(c, "user-a")

	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, float64(1), data["total"])
	assert.Len(t, data["transactions"], 1)
}

func TestHistory_EndDateInclusiveThroughDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	mockLedger.EXPECT().History(gomock.Any(), "user-a", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, params ports.HistoryParams) (*ports.HistoryPage, error) {
			require.NotNil(t, params.StartDate)
			assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), *params.StartDate)
			// A midnight end bound covers the whole named day.
			require.NotNil(t, params.EndDate)
			assert.Equal(t, time.Date(2026, 8, 30, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), *params.EndDate)
			return &ports.HistoryPage{Page: 1, Limit: 10, Pages: 1}, nil
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?start_date=2026-08-29&end_date=2026-08-30T00:00:00Z", nil)
	asUser(c, "user-a")

	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHistory_BadStartDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewTransactionHandler(mocks.NewMockLedgerService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?start_date=yesterday", nil)
	asUser(c, "user-a")

	h.History(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory_BadDirection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewTransactionHandler(mocks.NewMockLedgerService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?direction=sideways", nil)
	asUser(c, "user-a")

	h.History(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetails_NotParty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	mockLedger.EXPECT().Details(gomock.Any(), "user-c", "tx-1").
		Return(nil, apperror.ErrNotAuthorized())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "tx-1"}}
	asUser(c, "user-c")

	h.Details(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- Wallet Handler Tests ---

func TestBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProv := mocks.NewMockWalletProvisioner(ctrl)
	mockUsers := mocks.NewMockUserRepository(ctrl)
	h := NewWalletHandler(mockProv, mockUsers)

	user := &domain.User{ID: "user-a", ReceiveAddress: "bcrt1qexample"}
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-a").Return(user, nil)
	mockProv.EXPECT().Balance(gomock.Any(), user).Return(btc(t, 1.5), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	asUser(c, "user-a")

	h.Balance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, 1.5, data["balance"])
	assert.Equal(t, "bcrt1qexample", data["receive_address"])
}

func TestBalance_NodeUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProv := mocks.NewMockWalletProvisioner(ctrl)
	mockUsers := mocks.NewMockUserRepository(ctrl)
	h := NewWalletHandler(mockProv, mockUsers)

	user := &domain.User{ID: "user-a"}
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-a").Return(user, nil)
	mockProv.EXPECT().Balance(gomock.Any(), user).
		Return(btcutil.Amount(0), apperror.ErrNodeUnavailable(assert.AnError))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	asUser(c, "user-a")

	h.Balance(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAddress_Provisions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProv := mocks.NewMockWalletProvisioner(ctrl)
	mockUsers := mocks.NewMockUserRepository(ctrl)
	h := NewWalletHandler(mockProv, mockUsers)

	user := &domain.User{ID: "user-a"}
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-a").Return(user, nil)
	mockProv.EXPECT().EnsureAddress(gomock.Any(), user).Return("bcrt1qfresh", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	asUser(c, "user-a")

	h.Address(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "bcrt1qfresh", data["receive_address"])
}

// --- Campaign Handler Tests ---

func TestCampaignCreate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCampaigns := mocks.NewMockCampaignService(ctrl)
	h := NewCampaignHandler(mockCampaigns)

	mockCampaigns.EXPECT().Create(gomock.Any(), "user-a", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, campaign *domain.Campaign) (*domain.Campaign, error) {
			assert.Equal(t, "Save the Reef", campaign.Name)
			assert.Equal(t, btc(t, 10), campaign.GoalAmount)
			out := *campaign
			out.ID = "camp-1"
			out.CreatorID = "user-a"
			return &out, nil
		})

	w, c := jsonRequest(t, http.MethodPost, "/", dto.CampaignCreateRequest{
		Name:       "Save the Reef",
		GoalAmount: 10,
	})
	asUser(c, "user-a")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "camp-1", data["id"])
	assert.Equal(t, float64(0), data["progress"])
}

func TestCampaignDonate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCampaigns := mocks.NewMockCampaignService(ctrl)
	h := NewCampaignHandler(mockCampaigns)

	mockCampaigns.EXPECT().Donate(gomock.Any(), "user-a", "camp-1", btc(t, 2), "good cause").
		Return(&ports.DonationResult{
			Transaction: &domain.Transaction{
				ID:         "tx-don",
				FromUserID: "user-a",
				ToUserID:   "user-b",
				Amount:     btc(t, 2),
				Type:       domain.TransactionTypeDonation,
				Status:     domain.TransactionStatusCompleted,
			},
			Campaign: &domain.Campaign{
				ID:              "camp-1",
				Name:            "Save the Reef",
				GoalAmount:      btc(t, 10),
				CollectedAmount: btc(t, 2),
			},
		}, nil)

	w, c := jsonRequest(t, http.MethodPost, "/", dto.DonateRequest{Amount: 2, Message: "good cause"})
	c.Params = gin.Params{{Key: "id", Value: "camp-1"}}
	asUser(c, "user-a")

	h.Donate(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	campaign := data["campaign"].(map[string]interface{})
	assert.Equal(t, float64(20), campaign["progress"])
}

func TestCampaignUpdate_NotOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCampaigns := mocks.NewMockCampaignService(ctrl)
	h := NewCampaignHandler(mockCampaigns)

	mockCampaigns.EXPECT().Update(gomock.Any(), "user-b", gomock.Any()).
		Return(nil, apperror.ErrNotAuthorized())

	w, c := jsonRequest(t, http.MethodPut, "/", dto.CampaignUpdateRequest{
		Name:       "Hijacked",
		GoalAmount: 1,
	})
	c.Params = gin.Params{{Key: "id", Value: "camp-1"}}
	asUser(c, "user-b")

	h.Update(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- Contact Handler Tests ---

func TestContactAdd_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockContacts := mocks.NewMockContactService(ctrl)
	h := NewContactHandler(mockContacts)

	mockContacts.EXPECT().Add(gomock.Any(), "user-a", "bob@example.com").
		Return(&domain.ContactView{ID: "contact-1", UserID: "user-b", Email: "bob@example.com"}, nil)

	w, c := jsonRequest(t, http.MethodPost, "/", dto.ContactAddRequest{Email: "bob@example.com"})
	asUser(c, "user-a")

	h.Add(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "bob@example.com", data["email"])
}

func TestContactAdd_Duplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockContacts := mocks.NewMockContactService(ctrl)
	h := NewContactHandler(mockContacts)

	mockContacts.EXPECT().Add(gomock.Any(), "user-a", "bob@example.com").
		Return(nil, apperror.ErrDuplicateContact())

	w, c := jsonRequest(t, http.MethodPost, "/", dto.ContactAddRequest{Email: "bob@example.com"})
	asUser(c, "user-a")

	h.Add(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

// --- Money Request Handler Tests ---

func TestRequestPay_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRequests := mocks.NewMockRequestService(ctrl)
	h := NewRequestHandler(mockRequests)

	mockRequests.EXPECT().Pay(gomock.Any(), "user-b", "req-1").
		Return(&ports.TransferResult{
			Transaction: &domain.Transaction{
				ID:         "tx-req",
				FromUserID: "user-b",
				ToUserID:   "user-a",
				Amount:     btc(t, 1),
				Type:       domain.TransactionTypePayment,
				Status:     domain.TransactionStatusCompleted,
			},
			NodeTxID: "node-tx-req",
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	asUser(c, "user-b")

	h.Pay(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "sent", data["direction"])
}

func TestRequestPay_AlreadyResolved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRequests := mocks.NewMockRequestService(ctrl)
	h := NewRequestHandler(mockRequests)

	mockRequests.EXPECT().Pay(gomock.Any(), "user-b", "req-1").
		Return(nil, apperror.ErrRequestResolved())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	asUser(c, "user-b")

	h.Pay(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRequestList_BadDirection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewRequestHandler(mocks.NewMockRequestService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?direction=both", nil)
	asUser(c, "user-a")

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Health Check Test ---

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

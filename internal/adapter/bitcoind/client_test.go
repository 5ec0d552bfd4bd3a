package bitcoind

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paybit/config"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedCall struct {
	Path   string
	Method string
	Params []json.RawMessage
}

// newTestNode spins up a fake node that answers each RPC with the given
// result or error, recording what it was asked.
func newTestNode(t *testing.T, respond func(call capturedCall) (any, *NodeError)) (*Client, *[]capturedCall) {
	t.Helper()
	var calls []capturedCall

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rpcuser", user)
		require.Equal(t, "rpcpass", pass)

		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		call := capturedCall{Path: r.URL.Path, Method: req.Method, Params: req.Params}
		calls = append(calls, call)

		result, nodeErr := respond(call)
		resp := map[string]any{"result": result, "error": nodeErr}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.NodeConfig{
		URL:     srv.URL,
		User:    "rpcuser",
		Pass:    "rpcpass",
		Timeout: 2 * time.Second,
	}, zerolog.Nop())
	return client, &calls
}

func assertAppError(t *testing.T, err error, code string) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestClient_ListWallets(t *testing.T) {
	client, calls := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return []string{"user_wallet_a", "user_wallet_b"}, nil
	})

	names, err := client.ListWallets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"user_wallet_a", "user_wallet_b"}, names)
	assert.Equal(t, "/", (*calls)[0].Path)
}

func TestClient_LoadWallet_AlreadyLoadedIsSuccess(t *testing.T) {
	client, _ := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return nil, &NodeError{Code: -35, Message: "Wallet \"user_wallet_a\" is already loaded."}
	})

	assert.NoError(t, client.LoadWallet(context.Background(), "user_wallet_a"))
}

func TestClient_LoadWallet_MissingWallet(t *testing.T) {
	client, _ := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return nil, &NodeError{Code: -18, Message: "Requested wallet does not exist or is not loaded"}
	})

	err := client.LoadWallet(context.Background(), "user_wallet_a")
	assert.ErrorIs(t, err, ports.ErrWalletMissing)
}

func TestClient_CreateWallet_AlreadyExistsIsSuccess(t *testing.T) {
	client, _ := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return nil, &NodeError{Code: -4, Message: "Wallet file verification failed. Failed to create database path. Database already exists."}
	})

	assert.NoError(t, client.CreateWallet(context.Background(), "user_wallet_a"))
}

func TestClient_GetNewAddress_WalletScopedPath(t *testing.T) {
	client, calls := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return "bcrt1qtestaddress", nil
	})

	addr, err := client.GetNewAddress(context.Background(), "user_wallet_a")
	require.NoError(t, err)
	assert.Equal(t, "bcrt1qtestaddress", addr)
	assert.Equal(t, "/wallet/user_wallet_a", (*calls)[0].Path)

	var addrType string
	require.NoError(t, json.Unmarshal((*calls)[0].Params[1], &addrType))
	assert.Equal(t, "bech32m", addrType)
}

func TestClient_GetNewAddress_FallsBackWithoutAddressType(t *testing.T) {
	client, calls := newTestNode(t, func(call capturedCall) (any, *NodeError) {
		if len(call.Params) == 2 {
			return nil, &NodeError{Code: -8, Message: "Unknown address type"}
		}
		return "bcrt1qfallback", nil
	})

	addr, err := client.GetNewAddress(context.Background(), "user_wallet_a")
	require.NoError(t, err)
	assert.Equal(t, "bcrt1qfallback", addr)
	require.Len(t, *calls, 2)
}

func TestClient_GetBalance(t *testing.T) {
	client, _ := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return 1.5, nil
	})

	amt, err := client.GetBalance(context.Background(), "user_wallet_a")
	require.NoError(t, err)
	want, _ := btcutil.NewAmount(1.5)
	assert.Equal(t, want, amt)
}

func TestClient_GetBalance_MissingWalletReadsZero(t *testing.T) {
	client, _ := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return nil, &NodeError{Code: -18, Message: "Requested wallet does not exist or is not loaded"}
	})

	amt, err := client.GetBalance(context.Background(), "user_wallet_gone")
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(0), amt)
}

func TestClient_SendToAddress(t *testing.T) {
	client, calls := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return "f4184fc596403b9d638783cf57adfe4c75c605f6356fbc91338530e9831e9e16", nil
	})

	amt, _ := btcutil.NewAmount(25)
	txid, err := client.SendToAddress(context.Background(), "user_wallet_a", "bcrt1qdest", amt)
	require.NoError(t, err)
	assert.Equal(t, "f4184fc596403b9d638783cf57adfe4c75c605f6356fbc91338530e9831e9e16", txid)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/wallet/user_wallet_a", (*calls)[0].Path)
	// Amount must go over the wire in BTC, not satoshis.
	var btc float64
	require.NoError(t, json.Unmarshal((*calls)[0].Params[1], &btc))
	assert.Equal(t, 25.0, btc)
}

func TestClient_SendToAddress_InsufficientFunds(t *testing.T) {
	client, _ := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return nil, &NodeError{Code: -6, Message: "Insufficient funds"}
	})

	amt, _ := btcutil.NewAmount(100)
	_, err := client.SendToAddress(context.Background(), "user_wallet_a", "bcrt1qdest", amt)
	appErr := assertAppError(t, err, "WAL_002")
	assert.Contains(t, appErr.Message, "Insufficient funds")
}

func TestClient_SendToAddress_InvalidAddress(t *testing.T) {
	client, _ := newTestNode(t, func(capturedCall) (any, *NodeError) {
		return nil, &NodeError{Code: -5, Message: "Invalid address"}
	})

	amt, _ := btcutil.NewAmount(1)
	_, err := client.SendToAddress(context.Background(), "user_wallet_a", "garbage", amt)
	assertAppError(t, err, "WAL_002")
}

// Every error reply to sendtoaddress is a rejection, not a transport
// failure, whatever the code. WAL_001 would invite a retry of a send the
// node has deterministically refused.
func TestClient_SendToAddress_AnyNodeErrorIsRejection(t *testing.T) {
	for _, nodeErr := range []*NodeError{
		{Code: -4, Message: "Fee estimation failed. Fallbackfee is disabled."},
		{Code: -3, Message: "Invalid amount"},
		{Code: -13, Message: "Error: Please enter the wallet passphrase with walletpassphrase first."},
	} {
		client, _ := newTestNode(t, func(capturedCall) (any, *NodeError) {
			return nil, nodeErr
		})

		amt, _ := btcutil.NewAmount(1)
		_, err := client.SendToAddress(context.Background(), "user_wallet_a", "bcrt1qdest", amt)
		appErr := assertAppError(t, err, "WAL_002")
		assert.Contains(t, appErr.Message, nodeErr.Message)
	}
}

func TestClient_SendToAddress_TimeoutIsIndeterminate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"result":"deadbeef","error":null}`)
	}))
	defer srv.Close()

	client := NewClient(config.NodeConfig{URL: srv.URL, Timeout: 20 * time.Millisecond}, zerolog.Nop())

	amt, _ := btcutil.NewAmount(1)
	_, err := client.SendToAddress(context.Background(), "user_wallet_a", "bcrt1qdest", amt)
	assertAppError(t, err, "WAL_006")
}

func TestClient_NodeDown(t *testing.T) {
	client := NewClient(config.NodeConfig{URL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, zerolog.Nop())

	_, err := client.ListWallets(context.Background())
	assertAppError(t, err, "WAL_001")

	err = client.Ping(context.Background())
	assertAppError(t, err, "WAL_001")
}

func TestNodeError_Matchers(t *testing.T) {
	assert.True(t, isAlreadyLoaded(&NodeError{Code: -4, Message: "Wallet is already loaded"}))
	assert.True(t, isWalletMissing(&NodeError{Code: -4, Message: "wallet not found"}))
	assert.False(t, isAlreadyExists(&NodeError{Code: -4, Message: "disk full"}))

	var err error = &NodeError{Code: -35, Message: "Wallet is already loaded"}
	var nodeErr *NodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.True(t, isAlreadyLoaded(nodeErr))
}

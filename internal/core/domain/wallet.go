package domain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

const walletNamePrefix = "user_wallet_"

// WalletNameFor derives the custodial wallet name for a user.
// The mapping is deterministic and never stored independently.
func WalletNameFor(userID string) string {
	return walletNamePrefix + userID
}

// ValidateReceiveAddress checks that addr parses and belongs to the
// configured network. Guards against cross-network misconfiguration
// before any funds move.
func ValidateReceiveAddress(addr string, params *chaincfg.Params) error {
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return fmt.Errorf("decoding address: %w", err)
	}
	if !decoded.IsForNet(params) {
		return fmt.Errorf("address %s is not valid for network %s", addr, params.Name)
	}
	return nil
}

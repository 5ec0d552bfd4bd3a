package bitcoind

import (
	"fmt"
	"strings"
)

// Bitcoin Core RPC error codes the service cares about.
// See bitcoin-core rpcprotocol.h.
const (
	codeWalletError      = -4 // createwallet: already exists, and generic wallet failures
	codeInvalidParameter = -8
	codeWalletNotFound   = -18
	codeWalletNotLoaded  = -35 // loadwallet: already loaded
)

// NodeError is a JSON-RPC error object returned by the node.
type NodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node rpc error %d: %s", e.Code, e.Message)
}

// Older node versions vary error codes across commands, so a few checks
// fall back to message substrings.

func isAlreadyLoaded(e *NodeError) bool {
	return e.Code == codeWalletNotLoaded ||
		strings.Contains(strings.ToLower(e.Message), "already loaded")
}

func isAlreadyExists(e *NodeError) bool {
	return e.Code == codeWalletError &&
		strings.Contains(strings.ToLower(e.Message), "already exists")
}

func isWalletMissing(e *NodeError) bool {
	return e.Code == codeWalletNotFound ||
		strings.Contains(strings.ToLower(e.Message), "not found")
}

package chain

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

const maxErrorLen = 100

// FriendlyMessage turns a pipeline error into text fit for a user. Known
// failure modes get specific wording; anything else is truncated, with a
// structured revert reason preferred when the node supplies one.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()

	switch {
	case strings.Contains(msg, "insufficient funds"):
		return "Insufficient funds for gas."
	case strings.Contains(msg, "insufficient allowance"):
		return "Insufficient token allowance."
	case strings.Contains(msg, "transfer amount exceeds balance"):
		return "Transfer amount exceeds your token balance."
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := dataErr.ErrorData().(string); ok && reason != "" {
			return reason
		}
	}

	if len(msg) > maxErrorLen {
		return msg[:maxErrorLen] + "..."
	}
	return msg
}

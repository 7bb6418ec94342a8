package chain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFriendlyMessageKnownCases(t *testing.T) {
	assert.Equal(t, "Insufficient funds for gas.",
		FriendlyMessage(errors.New("err: insufficient funds for gas * price + value")))
	assert.Equal(t, "Insufficient token allowance.",
		FriendlyMessage(errors.New("execution reverted: ERC20: insufficient allowance")))
	assert.Equal(t, "Transfer amount exceeds your token balance.",
		FriendlyMessage(errors.New("execution reverted: ERC20: transfer amount exceeds balance")))
}

func TestFriendlyMessageTruncates(t *testing.T) {
	long := strings.Repeat("x", 250)
	out := FriendlyMessage(errors.New(long))
	assert.Len(t, out, maxErrorLen+3)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestFriendlyMessagePassthrough(t *testing.T) {
	assert.Equal(t, "user rejected", FriendlyMessage(errors.New("user rejected")))
	assert.Empty(t, FriendlyMessage(nil))
}

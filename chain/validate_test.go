package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDepositNative(t *testing.T) {
	gas, err := ValidateDeposit(KindNative, "0.01", "200000", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(200000), gas)
}

func TestValidateDepositRejectsBadInputs(t *testing.T) {
	_, err := ValidateDeposit(KindNative, "0", "200000", "")
	assert.Error(t, err)

	_, err = ValidateDeposit(KindNative, "-1", "200000", "")
	assert.Error(t, err)

	_, err = ValidateDeposit(KindNative, "abc", "200000", "")
	assert.Error(t, err)

	_, err = ValidateDeposit(KindNative, "1", "0", "")
	assert.Error(t, err)

	_, err = ValidateDeposit(KindNative, "1", "lots", "")
	assert.Error(t, err)

	_, err = ValidateDeposit(DepositKind("other"), "1", "200000", "")
	assert.Error(t, err)
}

func TestValidateDepositToken(t *testing.T) {
	_, err := ValidateDeposit(KindToken, "10", "200000", "not-an-address")
	assert.Error(t, err)

	gas, err := ValidateDeposit(KindToken, "10", "200000", "0x1c7d4b196cb0c7b01d743fbc6116a902379c7238")
	require.NoError(t, err)
	assert.Equal(t, uint64(200000), gas)
}

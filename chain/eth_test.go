package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wrapErrors "github.com/clarusnet/bridge_service/errors"
)

var (
	testContract = common.HexToAddress("0x4612e5fc49d1beFbDCFaDff920Bc708Cd13EA5C6")
	testToken    = common.HexToAddress("0x1c7d4b196cb0c7b01d743fbc6116a902379c7238")
)

// fakeBackend scripts chain responses and records the order of submissions,
// notifications and receipt waits.
type fakeBackend struct {
	decimals      uint8
	failDecimals  bool
	approveStatus uint64
	depositStatus uint64

	sent  []*types.Transaction
	order []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		decimals:      6,
		approveStatus: types.ReceiptStatusSuccessful,
		depositStatus: types.ReceiptStatusSuccessful,
	}
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) { return big.NewInt(11155111), nil }

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1e9), nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: big.NewInt(2e9)}, nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 60000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	f.order = append(f.order, "send")
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.order = append(f.order, "receipt")
	for _, tx := range f.sent {
		if tx.Hash() == hash {
			status := f.depositStatus
			if *tx.To() == testToken {
				status = f.approveStatus
			}
			return &types.Receipt{Status: status, TxHash: hash}, nil
		}
	}
	return nil, ethereum.NotFound
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.failDecimals {
		return nil, errors.New("execution reverted")
	}
	return erc20ABI.Methods["decimals"].Outputs.Pack(f.decimals)
}

func newTestBridge(t *testing.T, be *fakeBackend) *Bridge {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	b, err := newBridge(context.Background(), be, testContract, key)
	require.NoError(t, err)
	b.receiptInterval = time.Millisecond
	return b
}

func TestDepositETH(t *testing.T) {
	be := newFakeBackend()
	b := newTestBridge(t, be)
	b.Notify = func(ev TxEvent) {
		be.order = append(be.order, "notify:"+string(ev.Stage))
	}

	hash, err := b.DepositETH(context.Background(), "0.01", 200000)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, hash)

	require.Len(t, be.sent, 1)
	tx := be.sent[0]
	assert.Equal(t, testContract, *tx.To())
	assert.Equal(t, "10000000000000000", tx.Value().String())
	assert.Equal(t, uint64(200000), tx.Gas())
	assert.Equal(t, bridgeABI.Methods["depositETH"].ID, tx.Data())

	// the hash is surfaced before the receipt wait starts
	assert.Equal(t, []string{"send", "notify:deposit", "receipt"}, be.order)
}

func TestDepositETHReverted(t *testing.T) {
	be := newFakeBackend()
	be.depositStatus = types.ReceiptStatusFailed
	b := newTestBridge(t, be)

	hash, err := b.DepositETH(context.Background(), "0.01", 200000)
	require.Error(t, err)
	assert.NotEqual(t, common.Hash{}, hash) // hash still returned for manual verification

	var appErr *wrapErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, wrapErrors.CodeDepositFailed, appErr.Code)
}

func TestDepositERC20ConvertsToBaseUnits(t *testing.T) {
	be := newFakeBackend()
	be.decimals = 6
	b := newTestBridge(t, be)

	_, err := b.DepositERC20(context.Background(), testToken, "10", 200000)
	require.NoError(t, err)
	require.Len(t, be.sent, 2)

	approve := be.sent[0]
	assert.Equal(t, testToken, *approve.To())
	args, err := erc20ABI.Methods["approve"].Inputs.Unpack(approve.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, testContract, args[0].(common.Address))
	assert.Equal(t, "10000000", args[1].(*big.Int).String())

	deposit := be.sent[1]
	assert.Equal(t, testContract, *deposit.To())
	assert.Equal(t, uint64(200000), deposit.Gas())
	args, err = bridgeABI.Methods["depositERC20"].Inputs.Unpack(deposit.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, testToken, args[0].(common.Address))
	assert.Equal(t, "10000000", args[1].(*big.Int).String())
}

func TestDepositERC20ApprovalFailureAbortsPipeline(t *testing.T) {
	be := newFakeBackend()
	be.approveStatus = types.ReceiptStatusFailed
	b := newTestBridge(t, be)

	_, err := b.DepositERC20(context.Background(), testToken, "10", 200000)
	require.Error(t, err)

	var appErr *wrapErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, wrapErrors.CodeApprovalFailed, appErr.Code)

	// the deposit is never attempted
	require.Len(t, be.sent, 1)
	assert.Equal(t, testToken, *be.sent[0].To())
}

func TestDepositERC20DecimalsFailureAbortsBeforeSubmission(t *testing.T) {
	be := newFakeBackend()
	be.failDecimals = true
	b := newTestBridge(t, be)

	_, err := b.DepositERC20(context.Background(), testToken, "10", 200000)
	require.Error(t, err)

	var appErr *wrapErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, wrapErrors.CodeTokenDecimals, appErr.Code)
	assert.Empty(t, be.sent)
}

func TestDepositERC20NotifyOrdering(t *testing.T) {
	be := newFakeBackend()
	b := newTestBridge(t, be)

	var stages []TxStage
	b.Notify = func(ev TxEvent) {
		stages = append(stages, ev.Stage)
		assert.NotEqual(t, common.Hash{}, ev.Hash)
	}

	_, err := b.DepositERC20(context.Background(), testToken, "10", 200000)
	require.NoError(t, err)
	assert.Equal(t, []TxStage{StageApprove, StageDeposit}, stages)
}

func TestTokenDecimals(t *testing.T) {
	be := newFakeBackend()
	be.decimals = 18
	b := newTestBridge(t, be)

	d, err := b.TokenDecimals(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), d)
}

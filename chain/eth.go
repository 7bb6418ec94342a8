package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	wrapErrors "github.com/clarusnet/bridge_service/errors"
	"github.com/clarusnet/bridge_service/utils"
)

// TxStage labels which pipeline step a submitted transaction belongs to.
type TxStage string

const (
	StageApprove TxStage = "approve"
	StageDeposit TxStage = "deposit"
)

// TxEvent is emitted as soon as a transaction has been submitted, before its
// receipt is awaited. The hash must be observable even if the wait later
// fails, so a user can verify the transaction themselves.
type TxEvent struct {
	Stage TxStage
	Hash  common.Hash
}

// backend is the slice of ethclient.Client the bridge needs.
type backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Bridge submits deposit transactions against the fixed bridge contract.
// There are no retries: a failed submission, approval or confirmation wait
// is terminal for that action.
type Bridge struct {
	backend  backend
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int

	// Notify, when set, receives each submitted transaction hash before the
	// receipt wait starts.
	Notify func(TxEvent)

	receiptInterval time.Duration
}

// NewBridge dials the RPC endpoint and binds a signing key to the bridge
// contract.
func NewBridge(ctx context.Context, rpcURL string, contract common.Address, key *ecdsa.PrivateKey) (*Bridge, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, wrapErrors.WrapWithCode(wrapErrors.DailChain, "eth dial", err)
	}
	return newBridge(ctx, client, contract, key)
}

func newBridge(ctx context.Context, be backend, contract common.Address, key *ecdsa.PrivateKey) (*Bridge, error) {
	chainID, err := be.ChainID(ctx)
	if err != nil {
		return nil, wrapErrors.WrapWithCode(wrapErrors.GetchainIDErr, "get chainID", err)
	}
	return &Bridge{
		backend:         be,
		contract:        contract,
		key:             key,
		from:            crypto.PubkeyToAddress(key.PublicKey),
		chainID:         chainID,
		receiptInterval: 2 * time.Second,
	}, nil
}

// From returns the submitting account address.
func (b *Bridge) From() common.Address {
	return b.from
}

// DepositETH converts the decimal ETH amount to wei, submits depositETH with
// the given gas limit and awaits the receipt.
func (b *Bridge) DepositETH(ctx context.Context, amount string, gasLimit uint64) (common.Hash, error) {
	wei, err := utils.ETHToWei(amount)
	if err != nil {
		return common.Hash{}, wrapErrors.WrapWithCode(wrapErrors.CodeInvalidInput, "parse amount", err)
	}

	data, err := bridgeABI.Pack("depositETH")
	if err != nil {
		return common.Hash{}, err
	}

	tx, err := b.sendTx(ctx, b.contract, wei, data, gasLimit)
	if err != nil {
		return common.Hash{}, err
	}
	b.notify(TxEvent{Stage: StageDeposit, Hash: tx.Hash()})

	receipt, err := b.waitMined(ctx, tx.Hash())
	if err != nil {
		return tx.Hash(), err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), wrapErrors.WrapWithCode(wrapErrors.CodeDepositFailed, "depositETH",
			errors.New("transaction reverted"))
	}
	return tx.Hash(), nil
}

// DepositERC20 runs the token pipeline: query decimals, convert the amount
// to base units, approve the bridge contract for that amount, await the
// approval receipt, then submit depositERC20 and await its receipt. If the
// approval fails the deposit is never attempted. A successful approval ahead
// of a failed deposit leaves the granted allowance outstanding; no
// compensating revoke is issued.
func (b *Bridge) DepositERC20(ctx context.Context, token common.Address, amount string, gasLimit uint64) (common.Hash, error) {
	decimals, err := b.TokenDecimals(ctx, token)
	if err != nil {
		return common.Hash{}, wrapErrors.WrapWithCode(wrapErrors.CodeTokenDecimals, "could not fetch token decimals", err)
	}

	base, err := utils.ToBaseUnits(amount, decimals)
	if err != nil {
		return common.Hash{}, wrapErrors.WrapWithCode(wrapErrors.CodeInvalidInput, "parse amount", err)
	}

	approveData, err := erc20ABI.Pack("approve", b.contract, base)
	if err != nil {
		return common.Hash{}, err
	}
	approveTx, err := b.sendTx(ctx, token, nil, approveData, 0)
	if err != nil {
		return common.Hash{}, wrapErrors.WrapWithCode(wrapErrors.CodeApprovalFailed, "approve", err)
	}
	b.notify(TxEvent{Stage: StageApprove, Hash: approveTx.Hash()})

	approvalReceipt, err := b.waitMined(ctx, approveTx.Hash())
	if err != nil {
		return approveTx.Hash(), wrapErrors.WrapWithCode(wrapErrors.CodeApprovalFailed, "await approval", err)
	}
	if approvalReceipt.Status != types.ReceiptStatusSuccessful {
		return approveTx.Hash(), wrapErrors.WrapWithCode(wrapErrors.CodeApprovalFailed, "approve",
			errors.New("approval transaction reverted"))
	}

	depositData, err := bridgeABI.Pack("depositERC20", token, base)
	if err != nil {
		return approveTx.Hash(), err
	}
	depositTx, err := b.sendTx(ctx, b.contract, nil, depositData, gasLimit)
	if err != nil {
		return approveTx.Hash(), wrapErrors.WrapWithCode(wrapErrors.CodeDepositFailed, "depositERC20", err)
	}
	b.notify(TxEvent{Stage: StageDeposit, Hash: depositTx.Hash()})

	depositReceipt, err := b.waitMined(ctx, depositTx.Hash())
	if err != nil {
		return depositTx.Hash(), err
	}
	if depositReceipt.Status != types.ReceiptStatusSuccessful {
		return depositTx.Hash(), wrapErrors.WrapWithCode(wrapErrors.CodeDepositFailed, "depositERC20",
			errors.New("transaction reverted"))
	}
	return depositTx.Hash(), nil
}

// TokenDecimals queries the token's decimal precision.
func (b *Bridge) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := b.callContract(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}
	vals, err := erc20ABI.Unpack("decimals", out)
	if err != nil {
		return 0, err
	}
	decimals, ok := vals[0].(uint8)
	if !ok {
		return 0, errors.New("unexpected decimals type")
	}
	return decimals, nil
}

// BalanceOf queries the token balance of an account.
func (b *Bridge) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	out, err := b.callContract(ctx, token, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	vals, err := erc20ABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

// Allowance queries how much the bridge contract may still spend on behalf
// of an account.
func (b *Bridge) Allowance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	out, err := b.callContract(ctx, token, "allowance", account, b.contract)
	if err != nil {
		return nil, err
	}
	vals, err := erc20ABI.Unpack("allowance", out)
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

func (b *Bridge) callContract(ctx context.Context, to common.Address, method string, args ...interface{}) ([]byte, error) {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	return b.backend.CallContract(ctx, ethereum.CallMsg{From: b.from, To: &to, Data: data}, nil)
}

// sendTx signs and broadcasts an EIP-1559 transaction. A zero gasLimit asks
// the backend for an estimate.
func (b *Bridge) sendTx(ctx context.Context, to common.Address, value *big.Int, data []byte, gasLimit uint64) (*types.Transaction, error) {
	nonce, err := b.backend.PendingNonceAt(ctx, b.from)
	if err != nil {
		return nil, wrapErrors.WrapWithCode(wrapErrors.PendingNonceAt, "PendingNonceAt", err)
	}

	tip, err := b.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, err
	}
	header, err := b.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	feeCap := new(big.Int).Add(
		new(big.Int).Mul(header.BaseFee, big.NewInt(2)), // 留 buffer
		tip,
	)

	if gasLimit == 0 {
		gasLimit, err = b.backend.EstimateGas(ctx, ethereum.CallMsg{
			From: b.from, To: &to, Value: value, Data: data,
		})
		if err != nil {
			return nil, wrapErrors.WrapWithCode(wrapErrors.SendTxErr, "EstimateGas", err)
		}
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   b.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signer := types.NewLondonSigner(b.chainID)
	signedTx, err := types.SignTx(tx, signer, b.key)
	if err != nil {
		return nil, wrapErrors.WrapWithCode(wrapErrors.SignerErr, "SignTx", err)
	}

	if err := b.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, wrapErrors.WrapWithCode(wrapErrors.SendTxErr, "SendTransaction", err)
	}
	return signedTx, nil
}

// waitMined polls for the transaction receipt until it appears or ctx ends.
func (b *Bridge) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(b.receiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := b.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, wrapErrors.WrapWithCode(wrapErrors.CodeReceiptWait, "TransactionReceipt", err)
		}

		select {
		case <-ctx.Done():
			return nil, wrapErrors.WrapWithCode(wrapErrors.CodeReceiptWait, "TransactionReceipt", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (b *Bridge) notify(ev TxEvent) {
	if b.Notify != nil {
		b.Notify(ev)
	}
}

package errors

type Code string

const (
	CodeInvalidInput   Code = "INVALID_INPUT"
	DailChain          Code = "DIAL_CHAIN_ERROR"
	GetchainIDErr      Code = "GET_CHAIN_ID_ERROR"
	PendingNonceAt     Code = "PENDING_NONCE_AT_ERROR"
	SignerErr          Code = "SIGNER_ERROR"
	SendTxErr          Code = "SEND_TX_ERROR"
	CodeReceiptWait    Code = "RECEIPT_WAIT_ERROR"
	CodeTokenDecimals  Code = "TOKEN_DECIMALS_ERROR"
	CodeApprovalFailed Code = "APPROVAL_FAILED"
	CodeDepositFailed  Code = "DEPOSIT_FAILED"
)

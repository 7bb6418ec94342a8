package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clarusnet/bridge_service/chain"
	"github.com/clarusnet/bridge_service/client"
	"github.com/clarusnet/bridge_service/session"
)

var (
	registryURL  string
	rpcURL       string
	contractAddr string
	keyHex       string
	chainName    string
)

func main() {
	root := &cobra.Command{
		Use:   "bridge",
		Short: "Deposit ETH or ERC20 tokens into the bridge contract",
	}
	root.PersistentFlags().StringVar(&registryURL, "registry", "http://localhost:8080", "registry service base URL")
	root.PersistentFlags().StringVar(&rpcURL, "rpc", "", "Ethereum RPC endpoint")
	root.PersistentFlags().StringVar(&contractAddr, "contract", "", "bridge contract address")
	root.PersistentFlags().StringVar(&keyHex, "key", "", "hex-encoded signing key")
	root.PersistentFlags().StringVar(&chainName, "chain-name", "", "display name of the connected network")

	root.AddCommand(newProvisionCmd(), newDepositCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect derives the EVM address from the signing key and runs the session
// controller through its provisioning sequence against the registry.
func connect(ctx context.Context) (*session.Controller, session.Session, error) {
	if keyHex == "" {
		return nil, session.Session{}, errors.New("--key is required")
	}
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, session.Session{}, fmt.Errorf("invalid signing key: %w", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	ctrl := session.NewController(client.NewRegistryClient(registryURL))
	sess := ctrl.Connect(ctx, address, chainName)
	if sess.State == session.StateError {
		return nil, sess, errors.New(sess.Err)
	}
	return ctrl, sess, nil
}

func newProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Resolve or create the user record for the signing key's address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, sess, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("EVM address:  %s\n", sess.EVMAddress)
			fmt.Printf("SS58 address: %s\n", sess.SS58Address)
			return nil
		},
	}
}

func newDepositCmd() *cobra.Command {
	var (
		kind      string
		amount    string
		gasLimit  string
		tokenAddr string
	)

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit into the bridge contract",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			gas, err := chain.ValidateDeposit(chain.DepositKind(kind), amount, gasLimit, tokenAddr)
			if err != nil {
				return err
			}

			// the transaction form is only enabled once the session is ready
			_, sess, err := connect(ctx)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"evm_address":  sess.EVMAddress,
				"ss58_address": sess.SS58Address,
			}).Info("session ready")

			if rpcURL == "" || contractAddr == "" {
				return errors.New("--rpc and --contract are required")
			}
			key, err := crypto.HexToECDSA(keyHex)
			if err != nil {
				return err
			}
			bridge, err := chain.NewBridge(ctx, rpcURL, common.HexToAddress(contractAddr), key)
			if err != nil {
				return err
			}
			bridge.Notify = func(ev chain.TxEvent) {
				// print the hash before the receipt wait so the user can
				// verify the transaction even if the wait fails
				fmt.Printf("%s transaction submitted: %s\n", ev.Stage, ev.Hash.Hex())
			}

			var hash common.Hash
			switch chain.DepositKind(kind) {
			case chain.KindNative:
				hash, err = bridge.DepositETH(ctx, amount, gas)
			case chain.KindToken:
				hash, err = bridge.DepositERC20(ctx, common.HexToAddress(tokenAddr), amount, gas)
			}
			if err != nil {
				return errors.New(chain.FriendlyMessage(err))
			}

			fmt.Printf("deposit confirmed: %s\n", hash.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "native", "deposit kind: native or token")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to deposit (decimal)")
	cmd.Flags().StringVar(&gasLimit, "gas-limit", "200000", "gas limit for the deposit transaction")
	cmd.Flags().StringVar(&tokenAddr, "token", "", "ERC20 token contract address (token kind)")
	return cmd
}

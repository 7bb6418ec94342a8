package session

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/clarusnet/bridge_service/client"
	"github.com/clarusnet/bridge_service/storage"
)

// State is the wallet session's position in its lifecycle. The transaction
// form is only enabled once the session is Ready.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateProvisioning
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateProvisioning:
		return "provisioning"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Session is a snapshot of the controller's state. It is a value: callers
// get copies, never shared mutable fields.
type Session struct {
	State       State
	EVMAddress  string
	SS58Address string
	ChainName   string
	Err         string
}

// Event is a wallet-provider notification delivered to the controller.
type Event interface{ isEvent() }

// AccountsChanged carries the provider's current account list. An empty
// list means the wallet disconnected.
type AccountsChanged struct {
	Accounts  []string
	ChainName string
}

// ChainChanged signals a network switch. The controller resets wholesale,
// discarding all in-flight state; there is no server-side session to
// reconcile.
type ChainChanged struct {
	ChainID string
}

func (AccountsChanged) isEvent() {}
func (ChainChanged) isEvent()    {}

// Controller owns the wallet session state. Provider events arrive as
// messages; handlers run one at a time, so state transitions never race.
type Controller struct {
	registry *client.RegistryClient
	log      *logrus.Entry

	events chan Event

	mu      sync.Mutex
	session Session
}

func NewController(registry *client.RegistryClient) *Controller {
	return &Controller{
		registry: registry,
		log:      logrus.WithField("component", "session"),
		events:   make(chan Event, 8),
		session:  Session{State: StateDisconnected},
	}
}

// Session returns a copy of the current session snapshot.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Dispatch queues an event for the controller loop.
func (c *Controller) Dispatch(ev Event) {
	c.events <- ev
}

// Run consumes dispatched events until ctx ends.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.Apply(ctx, ev)
		}
	}
}

// Apply processes a single event synchronously.
func (c *Controller) Apply(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case AccountsChanged:
		if len(e.Accounts) == 0 {
			c.log.Info("wallet disconnected")
			c.reset()
			return
		}
		c.connect(ctx, e.Accounts[0], e.ChainName)
	case ChainChanged:
		c.log.WithField("chain_id", e.ChainID).Info("network changed, resetting session")
		c.reset()
	}
}

// Connect is the manual entry point behind the reconnect action. Re-entry
// is idempotent: it runs the same connect/provision sequence every time.
func (c *Controller) Connect(ctx context.Context, evmAddress, chainName string) Session {
	c.connect(ctx, evmAddress, chainName)
	return c.Session()
}

func (c *Controller) connect(ctx context.Context, evmAddress, chainName string) {
	c.set(Session{State: StateConnecting, ChainName: chainName})
	c.set(Session{State: StateConnected, EVMAddress: evmAddress, ChainName: chainName})
	c.provision(ctx, evmAddress, chainName)
}

// provision resolves or creates the user record for the connected address:
// GET by address, POST to create on a lookup miss, error state on anything
// else.
func (c *Controller) provision(ctx context.Context, evmAddress, chainName string) {
	c.set(Session{State: StateProvisioning, EVMAddress: evmAddress, ChainName: chainName})

	user, err := c.registry.GetUser(ctx, evmAddress)
	if errors.Is(err, storage.ErrNotFound) {
		c.log.WithField("evm_address", evmAddress).Info("no existing user, creating account")
		user, err = c.registry.CreateUser(ctx, evmAddress, "")
	}
	if err != nil {
		c.log.WithError(err).Error("user provisioning failed")
		c.set(Session{
			State:      StateError,
			EVMAddress: evmAddress,
			ChainName:  chainName,
			Err:        err.Error(),
		})
		return
	}

	c.set(Session{
		State:       StateReady,
		EVMAddress:  user.EVMAddress,
		SS58Address: user.SS58Address,
		ChainName:   chainName,
	})
}

func (c *Controller) reset() {
	c.set(Session{State: StateDisconnected})
}

func (c *Controller) set(s Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

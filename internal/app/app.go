package app

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"

	"pokerescrow/internal/codec"
	"pokerescrow/internal/events"
	"pokerescrow/internal/state"
)

const (
	AppVersion uint64 = 1
	appName           = "pokerescrow"
)

type Options struct {
	Logger log.Logger
	// Sink receives session notifications after the block that produced them
	// has been persisted.
	Sink events.Sink
	// MintEnabled allows the unsigned bank/mint faucet (devnets only).
	MintEnabled bool
}

type App struct {
	*abci.BaseApplication

	home        string
	logger      log.Logger
	sink        events.Sink
	mintEnabled bool

	mu       sync.Mutex
	st       *state.State
	lastHash []byte
	pending  []events.Event
}

func New(home string, opts Options) (*App, error) {
	appHome := filepath.Join(home, "app")
	st, err := state.Load(appHome)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	sink := opts.Sink
	if sink == nil {
		sink = events.NopSink{}
	}
	a := &App{
		BaseApplication: abci.NewBaseApplication(),
		home:            home,
		logger:          logger.With("module", "app"),
		sink:            sink,
		mintEnabled:     opts.MintEnabled,
		st:              st,
		lastHash:        st.AppHash(),
	}
	a.logger.Info("state loaded", "height", st.Height, "sessions", len(st.Sessions))
	return a, nil
}

func (a *App) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             appName,
		Version:          "v0",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx performs stateless validation only; authentication and every
// session rule run in FinalizeBlock.
func (a *App) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	if err := a.checkTx(req.Tx); err != nil {
		codespace, code, msg := errorsmod.ABCIInfo(err, false)
		return &abci.CheckTxResponse{Code: code, Codespace: codespace, Log: msg}, nil
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *App) checkTx(txBytes []byte) error {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return ErrInvalidRequest.Wrap(err.Error())
	}
	if !codec.KnownType(env.Type) {
		return ErrInvalidRequest.Wrapf("unknown tx type: %s", env.Type)
	}
	if env.Type == codec.TypeBankMint {
		if !a.mintEnabled {
			return ErrInvalidRequest.Wrap("bank/mint is disabled")
		}
		return nil
	}
	return requireSignedEnvelope(env)
}

// genesisState funds accounts at InitChain. Values are wei integers or
// ether with the "eth" suffix ("1.5eth").
type genesisState struct {
	Accounts map[string]string `json:"accounts"`
}

func (a *App) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(req.AppStateBytes) == 0 {
		return &abci.InitChainResponse{}, nil
	}
	var gen genesisState
	if err := json.Unmarshal(req.AppStateBytes, &gen); err != nil {
		return nil, errorsmod.Wrap(ErrInvalidRequest, "invalid genesis app_state")
	}
	addrs := make([]string, 0, len(gen.Accounts))
	for addr := range gen.Accounts {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	for _, addr := range addrs {
		amt, err := codec.ParseAmountOrEther(gen.Accounts[addr])
		if err != nil {
			return nil, errorsmod.Wrapf(ErrInvalidParameter, "genesis account %s: %v", addr, err)
		}
		if err := a.st.Credit(addr, amt); err != nil {
			return nil, errorsmod.Wrapf(ErrOverflow, "genesis account %s: %v", addr, err)
		}
	}
	a.lastHash = a.st.AppHash()
	a.logger.Info("genesis accounts funded", "accounts", len(addrs))
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *App) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, req.Height)
		txResults = append(txResults, res)
	}

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *App) Commit(ctx context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	appHome := filepath.Join(a.home, "app")
	if err := a.st.Save(appHome); err != nil {
		// Returning the error halts the node; a block we cannot persist must not be acknowledged.
		a.logger.Error("persist state", "height", a.st.Height, "err", err)
		return nil, err
	}

	pending := a.pending
	a.pending = nil
	for _, ev := range pending {
		if err := a.sink.Emit(ctx, ev); err != nil {
			a.logger.Warn("event sink rejected notification", "kind", string(ev.Kind), "session", ev.SessionID, "err", err)
		}
	}
	return &abci.CommitResponse{}, nil
}

// deliverTx executes one tx against a staged copy of the state. The copy
// replaces the live state only when the tx succeeds.
func (a *App) deliverTx(txBytes []byte, height int64) *abci.ExecTxResult {
	a.st.Height = height

	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return errResult(ErrInvalidRequest.Wrap(err.Error()))
	}
	staged, err := a.st.Clone()
	if err != nil {
		a.logger.Error("stage state", "err", err)
		return errResult(errorsmod.Wrap(ErrInvalidState, err.Error()))
	}

	out, err := a.route(staged, env)
	if err != nil {
		a.logger.Debug("tx rejected", "type", env.Type, "signer", env.Signer, "err", err)
		return errResult(err)
	}

	a.st = staged
	for _, ev := range out.notify {
		ev.Height = height
		a.pending = append(a.pending, ev)
	}
	return &abci.ExecTxResult{Code: 0, Events: out.events}
}

type txOutcome struct {
	events []abci.Event
	notify []events.Event
}

func sessionOutcome(ev events.Event) txOutcome {
	return txOutcome{events: []abci.Event{ev.ABCI()}, notify: []events.Event{ev}}
}

func (a *App) route(st *state.State, env codec.TxEnvelope) (txOutcome, error) {
	switch env.Type {
	case codec.TypeBankMint:
		var msg codec.BankMintTx
		if err := decodeValue(env, &msg); err != nil {
			return txOutcome{}, err
		}
		if !a.mintEnabled {
			return txOutcome{}, ErrInvalidRequest.Wrap("bank/mint is disabled")
		}
		if msg.To == "" {
			return txOutcome{}, ErrInvalidParameter.Wrap("missing to")
		}
		amt, err := parsePositiveAmount("amount", msg.Amount)
		if err != nil {
			return txOutcome{}, err
		}
		if err := st.Credit(msg.To, amt); err != nil {
			return txOutcome{}, ErrOverflow.Wrap(err.Error())
		}
		return txOutcome{events: []abci.Event{okEvent("BankMinted", map[string]string{
			"to":     msg.To,
			"amount": amt.String(),
		})}}, nil

	case codec.TypeBankSend:
		var msg codec.BankSendTx
		if err := decodeValue(env, &msg); err != nil {
			return txOutcome{}, err
		}
		if msg.From == "" || msg.To == "" {
			return txOutcome{}, ErrInvalidParameter.Wrap("missing from/to")
		}
		if _, err := a.authenticate(st, env, msg.From); err != nil {
			return txOutcome{}, err
		}
		amt, err := parsePositiveAmount("amount", msg.Amount)
		if err != nil {
			return txOutcome{}, err
		}
		if err := st.Debit(msg.From, amt); err != nil {
			return txOutcome{}, ErrInsufficientFunds.Wrap(err.Error())
		}
		if err := st.Credit(msg.To, amt); err != nil {
			return txOutcome{}, ErrOverflow.Wrap(err.Error())
		}
		return txOutcome{events: []abci.Event{okEvent("BankSent", map[string]string{
			"from":   msg.From,
			"to":     msg.To,
			"amount": amt.String(),
		})}}, nil

	case codec.TypeAuthRegisterAccount:
		var msg codec.AuthRegisterAccountTx
		if err := decodeValue(env, &msg); err != nil {
			return txOutcome{}, err
		}
		if err := requireRegisterAccountAuth(st, env, msg); err != nil {
			return txOutcome{}, err
		}
		if err := consumeNonce(st, env); err != nil {
			return txOutcome{}, err
		}
		st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
		return txOutcome{events: []abci.Event{okEvent("AccountKeyUpdated", map[string]string{
			"account": msg.Account,
		})}}, nil

	case codec.TypeSessionCreate:
		var msg codec.SessionCreateTx
		if err := decodeValue(env, &msg); err != nil {
			return txOutcome{}, err
		}
		actor, err := a.authenticate(st, env, "")
		if err != nil {
			return txOutcome{}, err
		}
		buyIn, err := parseAmountField("buyIn", msg.BuyIn)
		if err != nil {
			return txOutcome{}, err
		}
		_, ev, err := createSession(st, actor, buyIn)
		if err != nil {
			return txOutcome{}, err
		}
		return sessionOutcome(ev), nil

	case codec.TypeSessionJoin:
		var msg codec.SessionJoinTx
		if err := decodeValue(env, &msg); err != nil {
			return txOutcome{}, err
		}
		actor, err := a.authenticate(st, env, "")
		if err != nil {
			return txOutcome{}, err
		}
		payment, err := parseAmountField("payment", msg.Payment)
		if err != nil {
			return txOutcome{}, err
		}
		ev, err := joinSession(st, msg.SessionID, actor, payment)
		if err != nil {
			return txOutcome{}, err
		}
		return sessionOutcome(ev), nil

	case codec.TypeSessionStart:
		var msg codec.SessionStartTx
		if err := decodeValue(env, &msg); err != nil {
			return txOutcome{}, err
		}
		actor, err := a.authenticate(st, env, "")
		if err != nil {
			return txOutcome{}, err
		}
		ev, err := startSession(st, msg.SessionID, actor)
		if err != nil {
			return txOutcome{}, err
		}
		return sessionOutcome(ev), nil

	case codec.TypeSessionBet, codec.TypeSessionRaise, codec.TypeSessionCall, codec.TypeSessionFold:
		id, act, err := decodeAction(env)
		if err != nil {
			return txOutcome{}, err
		}
		actor, err := a.authenticate(st, env, "")
		if err != nil {
			return txOutcome{}, err
		}
		ev, err := applyAction(st, id, actor, act)
		if err != nil {
			return txOutcome{}, err
		}
		return sessionOutcome(ev), nil

	case codec.TypeSessionAdvance:
		var msg codec.SessionAdvanceTx
		if err := decodeValue(env, &msg); err != nil {
			return txOutcome{}, err
		}
		actor, err := a.authenticate(st, env, "")
		if err != nil {
			return txOutcome{}, err
		}
		ev, err := advanceRound(st, msg.SessionID, actor)
		if err != nil {
			return txOutcome{}, err
		}
		return sessionOutcome(ev), nil

	case codec.TypeSessionEnd:
		var msg codec.SessionEndTx
		if err := decodeValue(env, &msg); err != nil {
			return txOutcome{}, err
		}
		actor, err := a.authenticate(st, env, "")
		if err != nil {
			return txOutcome{}, err
		}
		ev, err := endSession(st, st, msg.SessionID, actor, msg.Winner)
		if err != nil {
			return txOutcome{}, err
		}
		a.logger.Info("session settled", "session", msg.SessionID, "winner", msg.Winner, "payout", codec.FormatEther(ev.Amount))
		return sessionOutcome(ev), nil

	default:
		return txOutcome{}, ErrInvalidRequest.Wrapf("unknown tx type: %s", env.Type)
	}
}

// authenticate verifies the envelope signature and consumes its nonce.
func (a *App) authenticate(st *state.State, env codec.TxEnvelope, account string) (string, error) {
	actor, err := requireAccountAuth(st, env, account)
	if err != nil {
		return "", err
	}
	if err := consumeNonce(st, env); err != nil {
		return "", err
	}
	return actor, nil
}

func decodeAction(env codec.TxEnvelope) (uint64, Action, error) {
	switch env.Type {
	case codec.TypeSessionBet:
		var msg codec.SessionBetTx
		if err := decodeValue(env, &msg); err != nil {
			return 0, nil, err
		}
		amt, err := parseAmountField("amount", msg.Amount)
		if err != nil {
			return 0, nil, err
		}
		return msg.SessionID, Bet{Amount: amt}, nil
	case codec.TypeSessionRaise:
		var msg codec.SessionRaiseTx
		if err := decodeValue(env, &msg); err != nil {
			return 0, nil, err
		}
		amt, err := parseAmountField("amount", msg.Amount)
		if err != nil {
			return 0, nil, err
		}
		return msg.SessionID, Raise{Amount: amt}, nil
	case codec.TypeSessionCall:
		var msg codec.SessionCallTx
		if err := decodeValue(env, &msg); err != nil {
			return 0, nil, err
		}
		return msg.SessionID, Call{}, nil
	case codec.TypeSessionFold:
		var msg codec.SessionFoldTx
		if err := decodeValue(env, &msg); err != nil {
			return 0, nil, err
		}
		return msg.SessionID, Fold{}, nil
	default:
		return 0, nil, ErrInvalidRequest.Wrapf("not an action: %s", env.Type)
	}
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if err := json.Unmarshal(env.Value, v); err != nil {
		return ErrInvalidRequest.Wrapf("bad %s value", env.Type)
	}
	return nil
}

func parseAmountField(field, raw string) (sdkmath.Uint, error) {
	amt, err := codec.ParseAmount(raw)
	if err != nil {
		return sdkmath.Uint{}, ErrInvalidParameter.Wrapf("%s: %v", field, err)
	}
	return amt, nil
}

func parsePositiveAmount(field, raw string) (sdkmath.Uint, error) {
	amt, err := parseAmountField(field, raw)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	if amt.IsZero() {
		return sdkmath.Uint{}, ErrInvalidParameter.Wrapf("%s must be > 0", field)
	}
	return amt, nil
}

func errResult(err error) *abci.ExecTxResult {
	codespace, code, msg := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Code: code, Codespace: codespace, Log: msg}
}

func okEvent(typ string, attrs map[string]string) abci.Event {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return ev
}

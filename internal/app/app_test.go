package app

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"

	"pokerescrow/internal/codec"
	"pokerescrow/internal/state"
)

// fataler is the subset of *testing.T and *rapid.T the helpers need.
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func mustMarshal(t fataler, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func txBytes(t fataler, typ string, value any) []byte {
	t.Helper()
	return mustMarshal(t, map[string]any{
		"type":  typ,
		"value": value,
	})
}

func testEd25519Key(name string) (ed25519.PublicKey, ed25519.PrivateKey) {
	seed := sha256.Sum256([]byte("pokerescrow/test-key/" + name))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), priv
}

func signedTxBytes(t fataler, typ string, value any, signer string, nonce uint64) []byte {
	t.Helper()
	valueBytes := mustMarshal(t, value)
	nonceStr := strconv.FormatUint(nonce, 10)
	_, priv := testEd25519Key(signer)
	sig := ed25519.Sign(priv, txAuthSignBytesV0(typ, valueBytes, nonceStr, signer))
	return mustMarshal(t, codec.TxEnvelope{
		Type:   typ,
		Value:  valueBytes,
		Nonce:  nonceStr,
		Signer: signer,
		Sig:    sig,
	})
}

func findEvent(events []abci.Event, typ string) *abci.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func attr(ev *abci.Event, key string) string {
	if ev == nil {
		return ""
	}
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func parseU64(t fataler, s string) uint64 {
	t.Helper()
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		t.Fatalf("parse uint64 %q: %v", s, err)
	}
	return n
}

func ether(s string) sdkmath.Uint { return codec.MustParseEther(s) }

func wei(s string) string { return ether(s).String() }

func mustOk(t fataler, res *abci.ExecTxResult) *abci.ExecTxResult {
	t.Helper()
	if res.Code != 0 {
		t.Fatalf("expected ok, got code=%d log=%q", res.Code, res.Log)
	}
	return res
}

func mustFail(t fataler, res *abci.ExecTxResult, want *errorsmod.Error) *abci.ExecTxResult {
	t.Helper()
	if res.Code != want.ABCICode() || res.Codespace != want.Codespace() {
		t.Fatalf("expected %s/%d (%s), got %s/%d log=%q", want.Codespace(), want.ABCICode(), want.Error(), res.Codespace, res.Code, res.Log)
	}
	return res
}

// harness drives an App at a fixed height and tracks per-signer nonces.
type harness struct {
	t      fataler
	a      *App
	height int64
	nonces map[string]uint64
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(t.TempDir(), Options{MintEnabled: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{t: t, a: newTestApp(t), height: 1, nonces: map[string]uint64{}}
}

func (h *harness) deliver(tx []byte) *abci.ExecTxResult {
	return h.a.deliverTx(tx, h.height)
}

// send signs value as signer with the next nonce and delivers it.
func (h *harness) send(typ string, value any, signer string) *abci.ExecTxResult {
	h.t.Helper()
	n := h.nonces[signer] + 1
	res := h.deliver(signedTxBytes(h.t, typ, value, signer, n))
	if res.Code == 0 {
		h.nonces[signer] = n
	}
	return res
}

// fund mints ether to addr and registers its test key.
func (h *harness) fund(addr string, amount string) {
	h.t.Helper()
	mustOk(h.t, h.deliver(txBytes(h.t, codec.TypeBankMint, map[string]any{"to": addr, "amount": wei(amount)})))
	pub, _ := testEd25519Key(addr)
	mustOk(h.t, h.send(codec.TypeAuthRegisterAccount, map[string]any{"account": addr, "pubKey": []byte(pub)}, addr))
}

func (h *harness) create(dealer string, buyIn string) uint64 {
	h.t.Helper()
	res := mustOk(h.t, h.send(codec.TypeSessionCreate, map[string]any{"buyIn": wei(buyIn)}, dealer))
	return parseU64(h.t, attr(findEvent(res.Events, "SessionCreated"), "sessionId"))
}

func (h *harness) join(id uint64, player string, payment string) *abci.ExecTxResult {
	h.t.Helper()
	return h.send(codec.TypeSessionJoin, map[string]any{"sessionId": id, "payment": wei(payment)}, player)
}

func (h *harness) start(id uint64, actor string) *abci.ExecTxResult {
	h.t.Helper()
	return h.send(codec.TypeSessionStart, map[string]any{"sessionId": id}, actor)
}

func (h *harness) bet(id uint64, actor string, amount string) *abci.ExecTxResult {
	h.t.Helper()
	return h.send(codec.TypeSessionBet, map[string]any{"sessionId": id, "amount": wei(amount)}, actor)
}

func (h *harness) raise(id uint64, actor string, amount string) *abci.ExecTxResult {
	h.t.Helper()
	return h.send(codec.TypeSessionRaise, map[string]any{"sessionId": id, "amount": wei(amount)}, actor)
}

func (h *harness) call(id uint64, actor string) *abci.ExecTxResult {
	h.t.Helper()
	return h.send(codec.TypeSessionCall, map[string]any{"sessionId": id}, actor)
}

func (h *harness) fold(id uint64, actor string) *abci.ExecTxResult {
	h.t.Helper()
	return h.send(codec.TypeSessionFold, map[string]any{"sessionId": id}, actor)
}

func (h *harness) advance(id uint64, actor string) *abci.ExecTxResult {
	h.t.Helper()
	return h.send(codec.TypeSessionAdvance, map[string]any{"sessionId": id}, actor)
}

func (h *harness) end(id uint64, actor string, winner string) *abci.ExecTxResult {
	h.t.Helper()
	return h.send(codec.TypeSessionEnd, map[string]any{"sessionId": id, "winner": winner}, actor)
}

func (h *harness) session(id uint64) *state.Session {
	h.t.Helper()
	s := h.a.st.Sessions[id]
	if s == nil {
		h.t.Fatalf("session %d not found", id)
	}
	return s
}

func assertPotConserved(t fataler, st *state.State) {
	t.Helper()
	for _, id := range st.SessionIDs() {
		s := st.Sessions[id]
		if !s.Pot.Equal(s.Contributions()) {
			t.Fatalf("session %d: pot=%s contributions=%s", id, s.Pot, s.Contributions())
		}
	}
}

func TestLiteralScenario(t *testing.T) {
	h := newHarness(t)
	for _, who := range []string{"A", "B", "C"} {
		h.fund(who, "10.0")
	}

	// 1. createSession(1.0) by A.
	id := h.create("A", "1.0")
	if id != 1 {
		t.Fatalf("expected first session id 1, got %d", id)
	}
	s := h.session(id)
	if s.Dealer != "A" || !s.BuyIn.Equal(ether("1.0")) || !s.Active || s.Phase != state.PhaseCreated || !s.Pot.IsZero() {
		t.Fatalf("unexpected new session: %+v", s)
	}

	// 2. B joins with exactly the buy-in.
	res := mustOk(t, h.join(id, "B", "1.0"))
	ev := findEvent(res.Events, "PlayerJoined")
	if attr(ev, "sessionId") != "1" || attr(ev, "player") != "B" {
		t.Fatalf("unexpected PlayerJoined event: %+v", ev)
	}
	if len(h.session(id).Players) != 1 || !h.session(id).Pot.Equal(ether("1.0")) {
		t.Fatalf("expected players=[B] pot=1.0, got %+v", h.session(id))
	}

	// 3. C underpays.
	res = mustFail(t, h.join(id, "C", "0.5"), ErrIncorrectStake)
	if !strings.Contains(res.Log, "Incorrect buy-in amount") {
		t.Fatalf("expected verbatim stake reason, got %q", res.Log)
	}
	if len(h.session(id).Players) != 1 {
		t.Fatalf("players changed after failed join")
	}

	// 4. Only the dealer can start.
	res = mustFail(t, h.start(id, "C"), ErrUnauthorized)
	if !strings.Contains(res.Log, "Not the dealer") {
		t.Fatalf("expected verbatim dealer reason, got %q", res.Log)
	}
	mustOk(t, h.start(id, "A"))
	if h.session(id).Phase != state.PhasePreFlop {
		t.Fatalf("expected preflop, got %s", h.session(id).Phase)
	}

	// 5. B bets 2.0, then tries a lower bet.
	res = mustOk(t, h.bet(id, "B", "2.0"))
	ev = findEvent(res.Events, "PlayerAction")
	if attr(ev, "player") != "B" || attr(ev, "action") != "Bet" || attr(ev, "amount") != wei("2.0") {
		t.Fatalf("unexpected PlayerAction event: %+v", ev)
	}
	if !h.session(id).CurrentBet.Equal(ether("2.0")) || !h.session(id).Pot.Equal(ether("3.0")) {
		t.Fatalf("expected currentBet=2.0 pot=3.0, got %s/%s", h.session(id).CurrentBet, h.session(id).Pot)
	}
	res = mustFail(t, h.bet(id, "B", "1.0"), ErrBetTooLow)
	if !strings.Contains(res.Log, "Bet must be higher than current bet") {
		t.Fatalf("expected verbatim bet reason, got %q", res.Log)
	}

	// 6. A ends the session with B as winner; a second end fails.
	res = mustOk(t, h.end(id, "A", "B"))
	ev = findEvent(res.Events, "SessionEnded")
	if attr(ev, "winner") != "B" || attr(ev, "payout") != wei("3.0") {
		t.Fatalf("unexpected SessionEnded event: %+v", ev)
	}
	if h.session(id).Active || h.session(id).Phase != state.PhaseEnded {
		t.Fatalf("expected ended session, got %+v", h.session(id))
	}
	if got := h.a.st.Balance("B"); !got.Equal(ether("10.0")) {
		t.Fatalf("expected B balance 10.0 after winning own stake back, got %s", codec.FormatEther(got))
	}
	mustFail(t, h.end(id, "A", "B"), ErrInvalidState)
}

func TestCreateSession_RejectsZeroBuyIn(t *testing.T) {
	h := newHarness(t)
	h.fund("A", "1.0")
	mustFail(t, h.send(codec.TypeSessionCreate, map[string]any{"buyIn": "0"}, "A"), ErrInvalidParameter)
	mustFail(t, h.send(codec.TypeSessionCreate, map[string]any{"buyIn": "-1"}, "A"), ErrInvalidParameter)
	if len(h.a.st.Sessions) != 0 {
		t.Fatalf("expected no sessions after rejected creates")
	}
}

func TestSessionIDsAreSequential(t *testing.T) {
	h := newHarness(t)
	h.fund("A", "1.0")
	for want := uint64(1); want <= 3; want++ {
		if got := h.create("A", "0.1"); got != want {
			t.Fatalf("expected id %d, got %d", want, got)
		}
	}
}

func TestJoinRules(t *testing.T) {
	h := newHarness(t)
	h.fund("A", "5.0")
	h.fund("B", "5.0")
	h.fund("poor", "0.5")
	id := h.create("A", "1.0")

	mustFail(t, h.join(99, "B", "1.0"), ErrNotFound)
	mustFail(t, h.join(id, "B", "1.5"), ErrIncorrectStake)
	mustFail(t, h.join(id, "poor", "1.0"), ErrInsufficientFunds)
	if got := h.a.st.Balance("poor"); !got.Equal(ether("0.5")) {
		t.Fatalf("failed join debited balance: %s", got)
	}

	mustOk(t, h.join(id, "B", "1.0"))
	mustFail(t, h.join(id, "B", "1.0"), ErrDuplicateMember)
	if got := h.a.st.Balance("B"); !got.Equal(ether("4.0")) {
		t.Fatalf("expected B balance 4.0 after escrow, got %s", codec.FormatEther(got))
	}

	// The dealer may also play.
	mustOk(t, h.join(id, "A", "1.0"))
	mustOk(t, h.start(id, "A"))

	h.fund("late", "2.0")
	mustFail(t, h.join(id, "late", "1.0"), ErrInvalidState)
	assertPotConserved(t, h.a.st)
}

func TestStartSession_RequiresPlayerAndCreatedState(t *testing.T) {
	h := newHarness(t)
	h.fund("A", "1.0")
	h.fund("B", "2.0")
	id := h.create("A", "1.0")

	mustFail(t, h.start(99, "A"), ErrNotFound)
	mustFail(t, h.start(id, "A"), ErrInvalidState)

	mustOk(t, h.join(id, "B", "1.0"))
	mustOk(t, h.start(id, "A"))
	mustFail(t, h.start(id, "A"), ErrInvalidState)
}

func TestBettingActions(t *testing.T) {
	h := newHarness(t)
	for _, who := range []string{"A", "B", "C"} {
		h.fund(who, "20.0")
	}
	id := h.create("A", "1.0")
	mustOk(t, h.join(id, "B", "1.0"))
	mustOk(t, h.join(id, "C", "1.0"))

	// No betting before start.
	mustFail(t, h.bet(id, "B", "1.0"), ErrInvalidState)
	mustOk(t, h.start(id, "A"))

	// Dealer is not seated, so cannot act.
	mustFail(t, h.bet(id, "A", "1.0"), ErrNotActivePlayer)
	// Raise needs a standing bet.
	mustFail(t, h.raise(id, "B", "1.0"), ErrInvalidState)
	mustFail(t, h.call(id, "B"), ErrNothingToCall)

	mustOk(t, h.bet(id, "B", "2.0"))
	res := mustOk(t, h.call(id, "C"))
	if ev := findEvent(res.Events, "PlayerAction"); attr(ev, "action") != "Call" || attr(ev, "amount") != wei("2.0") {
		t.Fatalf("unexpected call event: %+v", ev)
	}
	mustFail(t, h.call(id, "C"), ErrNothingToCall)
	if !h.session(id).Pot.Equal(ether("6.0")) {
		t.Fatalf("expected pot 6.0, got %s", codec.FormatEther(h.session(id).Pot))
	}

	mustFail(t, h.raise(id, "B", "2.0"), ErrBetTooLow)
	mustOk(t, h.raise(id, "B", "5.0"))
	if !h.session(id).CurrentBet.Equal(ether("5.0")) || !h.session(id).Pot.Equal(ether("11.0")) {
		t.Fatalf("expected currentBet=5.0 pot=11.0, got %s/%s", h.session(id).CurrentBet, h.session(id).Pot)
	}

	before := h.session(id).Pot
	res = mustOk(t, h.fold(id, "C"))
	if ev := findEvent(res.Events, "PlayerAction"); attr(ev, "action") != "Fold" || attr(ev, "amount") != "0" {
		t.Fatalf("unexpected fold event: %+v", ev)
	}
	if !h.session(id).Pot.Equal(before) {
		t.Fatalf("fold changed pot")
	}
	mustFail(t, h.bet(id, "C", "9.0"), ErrNotActivePlayer)
	mustFail(t, h.call(id, "C"), ErrNotActivePlayer)
	mustFail(t, h.fold(id, "C"), ErrNotActivePlayer)

	mustFail(t, h.bet(id, "B", "100.0"), ErrInsufficientFunds)
	assertPotConserved(t, h.a.st)
}

func TestAdvanceRound_ResetsCurrentBet(t *testing.T) {
	h := newHarness(t)
	h.fund("A", "1.0")
	h.fund("B", "10.0")
	id := h.create("A", "1.0")
	mustOk(t, h.join(id, "B", "1.0"))

	mustFail(t, h.advance(id, "A"), ErrInvalidState)
	mustOk(t, h.start(id, "A"))
	mustOk(t, h.bet(id, "B", "3.0"))

	mustFail(t, h.advance(id, "B"), ErrUnauthorized)
	res := mustOk(t, h.advance(id, "A"))
	if ev := findEvent(res.Events, "RoundAdvanced"); attr(ev, "round") != "flop" {
		t.Fatalf("unexpected RoundAdvanced event: %+v", ev)
	}
	s := h.session(id)
	if s.Phase != state.PhaseFlop || !s.CurrentBet.IsZero() || !s.Players[0].RoundBet.IsZero() {
		t.Fatalf("expected flop with reset bets, got %+v", s)
	}

	// Lower than the previous round's bet is fine in a new round.
	mustOk(t, h.bet(id, "B", "1.0"))

	for _, want := range []state.Phase{state.PhaseTurn, state.PhaseRiver, state.PhaseShowdown} {
		mustOk(t, h.advance(id, "A"))
		if got := h.session(id).Phase; got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
	mustFail(t, h.advance(id, "A"), ErrInvalidState)
	mustFail(t, h.bet(id, "B", "1.0"), ErrInvalidState)
	mustOk(t, h.end(id, "A", "B"))
	mustFail(t, h.advance(id, "A"), ErrInvalidState)
}

func TestEndSession_Rules(t *testing.T) {
	h := newHarness(t)
	for _, who := range []string{"A", "B", "C"} {
		h.fund(who, "5.0")
	}
	id := h.create("A", "1.0")
	mustOk(t, h.join(id, "B", "1.0"))
	mustOk(t, h.join(id, "C", "1.0"))
	mustOk(t, h.start(id, "A"))
	mustOk(t, h.fold(id, "C"))

	mustFail(t, h.end(99, "A", "B"), ErrNotFound)
	mustFail(t, h.end(id, "B", "B"), ErrUnauthorized)
	if !h.session(id).Active {
		t.Fatalf("non-dealer end must leave session active")
	}
	mustFail(t, h.end(id, "A", "stranger"), ErrUnknownWinner)
	mustFail(t, h.end(id, "A", "C"), ErrUnknownWinner)

	mustOk(t, h.end(id, "A", "B"))
	s := h.session(id)
	if s.Winner != "B" || !s.Payout.Equal(ether("2.0")) || s.EndedHeight != h.height {
		t.Fatalf("unexpected settlement record: %+v", s)
	}
	if got := h.a.st.Balance("B"); !got.Equal(ether("6.0")) {
		t.Fatalf("expected B balance 6.0, got %s", codec.FormatEther(got))
	}

	// Ended sessions are immutable.
	mustFail(t, h.bet(id, "B", "1.0"), ErrInvalidState)
	mustFail(t, h.join(id, "C", "1.0"), ErrInvalidState)
	mustFail(t, h.end(id, "A", "B"), ErrInvalidState)
}

func TestEndSession_AllowedFromCreated(t *testing.T) {
	h := newHarness(t)
	h.fund("A", "1.0")
	h.fund("B", "1.0")
	id := h.create("A", "1.0")
	mustOk(t, h.join(id, "B", "1.0"))
	mustOk(t, h.end(id, "A", "B"))
	if got := h.a.st.Balance("B"); !got.Equal(ether("1.0")) {
		t.Fatalf("expected refund of escrow to sole player, got %s", got)
	}
}

func TestFailedTxLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	h.fund("A", "5.0")
	h.fund("B", "5.0")
	id := h.create("A", "1.0")
	mustOk(t, h.join(id, "B", "1.0"))
	mustOk(t, h.start(id, "A"))

	before := h.a.st.AppHash()
	pending := len(h.a.pending)
	mustFail(t, h.bet(id, "B", "50.0"), ErrInsufficientFunds)
	mustFail(t, h.join(id, "C", "1.0"), ErrUnauthenticated)
	mustFail(t, h.end(id, "B", "B"), ErrUnauthorized)
	mustFail(t, h.deliver([]byte("not json")), ErrInvalidRequest)
	mustFail(t, h.deliver(txBytes(t, "session/unknown", map[string]any{})), ErrInvalidRequest)

	if got := h.a.st.AppHash(); string(got) != string(before) {
		t.Fatalf("app hash changed after failed txs")
	}
	if len(h.a.pending) != pending {
		t.Fatalf("failed txs queued notifications: %+v", h.a.pending[pending:])
	}
}

func TestNextSessionIDOverflow(t *testing.T) {
	h := newHarness(t)
	h.fund("A", "1.0")
	h.a.st.NextSessionID = ^uint64(0)

	res := mustFail(t, h.send(codec.TypeSessionCreate, map[string]any{"buyIn": wei("1.0")}, "A"), ErrOverflow)
	if !strings.Contains(res.Log, "nextSessionId") {
		t.Fatalf("expected overflow log to name the counter, got %q", res.Log)
	}
	if len(h.a.st.Sessions) != 0 {
		t.Fatalf("expected no session created on overflow")
	}
}

func TestBankSend(t *testing.T) {
	h := newHarness(t)
	h.fund("A", "2.0")

	mustOk(t, h.send(codec.TypeBankSend, map[string]any{"from": "A", "to": "B", "amount": wei("0.5")}, "A"))
	if !h.a.st.Balance("B").Equal(ether("0.5")) || !h.a.st.Balance("A").Equal(ether("1.5")) {
		t.Fatalf("unexpected balances A=%s B=%s", h.a.st.Balance("A"), h.a.st.Balance("B"))
	}
	mustFail(t, h.send(codec.TypeBankSend, map[string]any{"from": "A", "to": "B", "amount": wei("9.0")}, "A"), ErrInsufficientFunds)
	mustFail(t, h.send(codec.TypeBankSend, map[string]any{"from": "A", "to": "B", "amount": "0"}, "A"), ErrInvalidParameter)
	// Signer must own the debited account.
	mustFail(t, h.send(codec.TypeBankSend, map[string]any{"from": "B", "to": "A", "amount": "1"}, "A"), ErrUnauthenticated)
}

func TestMintDisabled(t *testing.T) {
	a, err := New(t.TempDir(), Options{MintEnabled: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tx := txBytes(t, codec.TypeBankMint, map[string]any{"to": "A", "amount": "1"})
	mustFail(t, a.deliverTx(tx, 1), ErrInvalidRequest)

	res, err := a.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: tx})
	if err != nil {
		t.Fatalf("CheckTx: %v", err)
	}
	if res.Code == 0 {
		t.Fatalf("expected CheckTx to reject mint when disabled")
	}
}

func TestCheckTx(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	cases := []struct {
		name string
		tx   []byte
		ok   bool
	}{
		{"garbage", []byte("{"), false},
		{"unknown type", txBytes(t, "poker/act", map[string]any{}), false},
		{"unsigned session tx", txBytes(t, codec.TypeSessionCreate, map[string]any{"buyIn": "1"}), false},
		{"mint", txBytes(t, codec.TypeBankMint, map[string]any{"to": "A", "amount": "1"}), true},
		{"signed session tx", signedTxBytes(t, codec.TypeSessionCreate, map[string]any{"buyIn": "1"}, "A", 1), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := a.CheckTx(ctx, &abci.CheckTxRequest{Tx: tc.tx})
			if err != nil {
				t.Fatalf("CheckTx: %v", err)
			}
			if (res.Code == 0) != tc.ok {
				t.Fatalf("ok=%v want %v (code=%d log=%q)", res.Code == 0, tc.ok, res.Code, res.Log)
			}
		})
	}
}

func TestInitChainFundsGenesisAccounts(t *testing.T) {
	a := newTestApp(t)
	gen := mustMarshal(t, map[string]any{"accounts": map[string]string{
		"A": wei("100.0"),
		"B": "7",
		"C": "2.5eth",
	}})
	res, err := a.InitChain(context.Background(), &abci.InitChainRequest{AppStateBytes: gen})
	if err != nil {
		t.Fatalf("InitChain: %v", err)
	}
	if len(res.AppHash) == 0 {
		t.Fatalf("expected genesis app hash")
	}
	if !a.st.Balance("A").Equal(ether("100.0")) || !a.st.Balance("B").Equal(sdkmath.NewUint(7)) || !a.st.Balance("C").Equal(ether("2.5")) {
		t.Fatalf("unexpected genesis balances: %+v", a.st.Accounts)
	}

	bad := newTestApp(t)
	if _, err := bad.InitChain(context.Background(), &abci.InitChainRequest{
		AppStateBytes: mustMarshal(t, map[string]any{"accounts": map[string]string{"A": "1.5"}}),
	}); err == nil {
		t.Fatalf("expected non-integer genesis amount to fail")
	}

	huge := newTestApp(t)
	if _, err := huge.InitChain(context.Background(), &abci.InitChainRequest{
		AppStateBytes: mustMarshal(t, map[string]any{"accounts": map[string]string{"A": "1" + strings.Repeat("0", 70) + "eth"}}),
	}); err == nil {
		t.Fatalf("expected out-of-range genesis ether amount to fail")
	}
}

func TestFinalizeCommitPersistsState(t *testing.T) {
	home := t.TempDir()
	a, err := New(home, Options{MintEnabled: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	tx := txBytes(t, codec.TypeBankMint, map[string]any{"to": "A", "amount": "5"})
	fin, err := a.FinalizeBlock(ctx, &abci.FinalizeBlockRequest{Height: 3, Txs: [][]byte{tx}})
	if err != nil {
		t.Fatalf("FinalizeBlock: %v", err)
	}
	mustOk(t, fin.TxResults[0])
	if _, err := a.Commit(ctx, &abci.CommitRequest{}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reopened, err := New(home, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	info, err := reopened.Info(ctx, &abci.InfoRequest{})
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.LastBlockHeight != 3 || string(info.LastBlockAppHash) != string(fin.AppHash) {
		t.Fatalf("unexpected info after reopen: height=%d hash=%x want %x", info.LastBlockHeight, info.LastBlockAppHash, fin.AppHash)
	}
	if !reopened.st.Balance("A").Equal(sdkmath.NewUint(5)) {
		t.Fatalf("balance not persisted")
	}
}

func ExampleCategory() {
	fmt.Println(Category(ErrBetTooLow.Wrap("amount=1 currentBet=2")))
	fmt.Println(Category(ErrUnauthorized))
	fmt.Println(Category(ErrInvalidState))
	fmt.Println(Category(ErrNotFound))
	// Output:
	// validation
	// authorization
	// state
	// lookup
}

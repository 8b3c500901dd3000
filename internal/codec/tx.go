package codec

import (
	"encoding/json"
	"fmt"
)

// TxEnvelope is the transaction container.
//
// CometBFT transactions are opaque bytes; txs are JSON-encoded envelopes
// routed by Type, with the message body in Value.
type TxEnvelope struct {
	// Basic routing.
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Tx auth:
	// - Nonce: decimal u64, must strictly increase per signer (replay protection).
	// - Signer: account id of the acting party.
	// - Sig: Ed25519 signature over (type, nonce, signer, sha256(value)).
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// Tx type routes.
const (
	TypeBankMint            = "bank/mint"
	TypeBankSend            = "bank/send"
	TypeAuthRegisterAccount = "auth/register_account"

	TypeSessionCreate  = "session/create"
	TypeSessionJoin    = "session/join"
	TypeSessionStart   = "session/start"
	TypeSessionBet     = "session/bet"
	TypeSessionCall    = "session/call"
	TypeSessionRaise   = "session/raise"
	TypeSessionFold    = "session/fold"
	TypeSessionAdvance = "session/advance"
	TypeSessionEnd     = "session/end"
)

// KnownType reports whether typ is routed by the application.
func KnownType(typ string) bool {
	switch typ {
	case TypeBankMint, TypeBankSend, TypeAuthRegisterAccount,
		TypeSessionCreate, TypeSessionJoin, TypeSessionStart,
		TypeSessionBet, TypeSessionCall, TypeSessionRaise, TypeSessionFold,
		TypeSessionAdvance, TypeSessionEnd:
		return true
	default:
		return false
	}
}

// Amounts are decimal strings in base units (wei); see ParseAmount.

// ---- Bank ----

type BankMintTx struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type BankSendTx struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// ---- Auth ----

// AuthRegisterAccountTx binds an ed25519 key to an account. It must be
// self-signed by that key.
type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Session ----
//
// The acting party is always the envelope signer.

type SessionCreateTx struct {
	BuyIn string `json:"buyIn"`
}

type SessionJoinTx struct {
	SessionID uint64 `json:"sessionId"`
	Payment   string `json:"payment"`
}

type SessionStartTx struct {
	SessionID uint64 `json:"sessionId"`
}

type SessionBetTx struct {
	SessionID uint64 `json:"sessionId"`
	Amount    string `json:"amount"`
}

type SessionCallTx struct {
	SessionID uint64 `json:"sessionId"`
}

type SessionRaiseTx struct {
	SessionID uint64 `json:"sessionId"`
	Amount    string `json:"amount"`
}

type SessionFoldTx struct {
	SessionID uint64 `json:"sessionId"`
}

type SessionAdvanceTx struct {
	SessionID uint64 `json:"sessionId"`
}

type SessionEndTx struct {
	SessionID uint64 `json:"sessionId"`
	Winner    string `json:"winner"`
}

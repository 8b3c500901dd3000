// Package events defines the session lifecycle notifications and the sinks
// they are delivered to. Notifications are observability only: no ledger
// logic depends on a sink succeeding.
package events

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
)

type Kind string

// Event type names are part of the client-facing surface; keep them stable.
const (
	KindSessionCreated Kind = "SessionCreated"
	KindPlayerJoined   Kind = "PlayerJoined"
	KindSessionStarted Kind = "SessionStarted"
	KindPlayerAction   Kind = "PlayerAction"
	KindRoundAdvanced  Kind = "RoundAdvanced"
	KindSessionEnded   Kind = "SessionEnded"
)

// Event is one lifecycle notification. Only the fields relevant to Kind are
// populated; Amount is always non-nil (zero when unused).
type Event struct {
	Kind      Kind   `json:"kind"`
	SessionID uint64 `json:"sessionId"`
	Height    int64  `json:"height,omitempty"`

	Dealer string `json:"dealer,omitempty"`
	Player string `json:"player,omitempty"`
	Winner string `json:"winner,omitempty"`

	// Action is the compatibility label ("Bet", "Call", "Raise", "Fold").
	Action string `json:"action,omitempty"`
	// Round is the phase entered by RoundAdvanced.
	Round string `json:"round,omitempty"`

	// BuyIn for SessionCreated, payment for PlayerJoined, action amount for
	// PlayerAction, payout for SessionEnded.
	Amount sdkmath.Uint `json:"amount"`
}

func SessionCreated(id uint64, dealer string, buyIn sdkmath.Uint) Event {
	return Event{Kind: KindSessionCreated, SessionID: id, Dealer: dealer, Amount: buyIn}
}

func PlayerJoined(id uint64, player string, payment sdkmath.Uint) Event {
	return Event{Kind: KindPlayerJoined, SessionID: id, Player: player, Amount: payment}
}

func SessionStarted(id uint64) Event {
	return Event{Kind: KindSessionStarted, SessionID: id, Amount: sdkmath.ZeroUint()}
}

func PlayerAction(id uint64, player, action string, amount sdkmath.Uint) Event {
	return Event{Kind: KindPlayerAction, SessionID: id, Player: player, Action: action, Amount: amount}
}

func RoundAdvanced(id uint64, round string) Event {
	return Event{Kind: KindRoundAdvanced, SessionID: id, Round: round, Amount: sdkmath.ZeroUint()}
}

func SessionEnded(id uint64, winner string, payout sdkmath.Uint) Event {
	return Event{Kind: KindSessionEnded, SessionID: id, Winner: winner, Amount: payout}
}

// ABCI renders the notification as a tx result event. Attribute order is
// fixed per kind so results hash identically on every node.
func (e Event) ABCI() abci.Event {
	attrs := []abci.EventAttribute{
		{Key: "sessionId", Value: fmt.Sprintf("%d", e.SessionID), Index: true},
	}
	switch e.Kind {
	case KindSessionCreated:
		attrs = append(attrs,
			abci.EventAttribute{Key: "dealer", Value: e.Dealer, Index: true},
			abci.EventAttribute{Key: "buyIn", Value: e.Amount.String(), Index: false},
		)
	case KindPlayerJoined:
		attrs = append(attrs,
			abci.EventAttribute{Key: "player", Value: e.Player, Index: true},
			abci.EventAttribute{Key: "payment", Value: e.Amount.String(), Index: false},
		)
	case KindSessionStarted:
	case KindPlayerAction:
		attrs = append(attrs,
			abci.EventAttribute{Key: "player", Value: e.Player, Index: true},
			abci.EventAttribute{Key: "action", Value: e.Action, Index: true},
			abci.EventAttribute{Key: "amount", Value: e.Amount.String(), Index: false},
		)
	case KindRoundAdvanced:
		attrs = append(attrs, abci.EventAttribute{Key: "round", Value: e.Round, Index: true})
	case KindSessionEnded:
		attrs = append(attrs,
			abci.EventAttribute{Key: "winner", Value: e.Winner, Index: true},
			abci.EventAttribute{Key: "payout", Value: e.Amount.String(), Index: false},
		)
	}
	return abci.Event{Type: string(e.Kind), Attributes: attrs}
}

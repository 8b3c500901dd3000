package state

import (
	sdkmath "cosmossdk.io/math"
)

// Phase is the lifecycle position of a session. The order is fixed:
// created -> preflop -> flop -> turn -> river -> showdown, and any
// non-terminal phase may jump to ended via settlement.
type Phase string

const (
	PhaseCreated  Phase = "created"
	PhasePreFlop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
	PhaseEnded    Phase = "ended"
)

// IsBetting reports whether bet/call/raise/fold are legal in p.
func (p Phase) IsBetting() bool {
	switch p {
	case PhasePreFlop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	default:
		return false
	}
}

// Next returns the phase advanceRound moves to. ok is false for phases that
// cannot be advanced by the dealer (created, showdown, ended).
func (p Phase) Next() (next Phase, ok bool) {
	switch p {
	case PhasePreFlop:
		return PhaseFlop, true
	case PhaseFlop:
		return PhaseTurn, true
	case PhaseTurn:
		return PhaseRiver, true
	case PhaseRiver:
		return PhaseShowdown, true
	default:
		return p, false
	}
}

type Player struct {
	Address      string       `json:"address"`
	Contribution sdkmath.Uint `json:"contribution"`
	// RoundBet is the player's standing bet level in the current round.
	RoundBet sdkmath.Uint `json:"roundBet"`
	Folded   bool         `json:"folded"`
}

type Session struct {
	ID     uint64       `json:"id"`
	Dealer string       `json:"dealer"`
	BuyIn  sdkmath.Uint `json:"buyIn"`
	Active bool         `json:"isActive"`
	Phase  Phase        `json:"state"`

	// Join order.
	Players []Player `json:"players"`

	CurrentBet sdkmath.Uint `json:"currentBet"`
	Pot        sdkmath.Uint `json:"pot"`

	// Settlement record; Payout is zero until the session ends.
	Winner string       `json:"winner,omitempty"`
	Payout sdkmath.Uint `json:"payout"`

	CreatedHeight int64 `json:"createdHeight"`
	EndedHeight   int64 `json:"endedHeight,omitempty"`
}

func NewSession(id uint64, dealer string, buyIn sdkmath.Uint, height int64) *Session {
	return &Session{
		ID:            id,
		Dealer:        dealer,
		BuyIn:         buyIn,
		Active:        true,
		Phase:         PhaseCreated,
		Players:       []Player{},
		CurrentBet:    sdkmath.ZeroUint(),
		Pot:           sdkmath.ZeroUint(),
		Payout:        sdkmath.ZeroUint(),
		CreatedHeight: height,
	}
}

// FindPlayer returns the player with the given address, or nil.
func (s *Session) FindPlayer(addr string) *Player {
	for i := range s.Players {
		if s.Players[i].Address == addr {
			return &s.Players[i]
		}
	}
	return nil
}

// Contributions sums every player's contribution. It equals Pot in any
// consistent session.
func (s *Session) Contributions() sdkmath.Uint {
	sum := sdkmath.ZeroUint()
	for _, p := range s.Players {
		sum = sum.Add(p.Contribution)
	}
	return sum
}

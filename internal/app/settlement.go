package app

import (
	sdkmath "cosmossdk.io/math"

	"pokerescrow/internal/events"
	"pokerescrow/internal/state"
)

// Bank pays out settled pots. It only sees an address and an amount, so a
// payout cannot reach back into session state.
type Bank interface {
	Credit(addr string, amt sdkmath.Uint) error
}

// endSession closes the session and pays the whole pot to winner. The
// session is marked ended before the bank is called.
func endSession(st *state.State, bank Bank, id uint64, actor string, winner string) (events.Event, error) {
	s, err := getSession(st, id)
	if err != nil {
		return events.Event{}, err
	}
	if err := requireDealer(s, actor); err != nil {
		return events.Event{}, err
	}
	if !s.Active || s.Phase == state.PhaseEnded {
		return events.Event{}, ErrInvalidState.Wrapf("session %d already ended", id)
	}
	p := s.FindPlayer(winner)
	if p == nil || p.Folded {
		return events.Event{}, ErrUnknownWinner.Wrapf("%q in session %d", winner, id)
	}

	payout := s.Pot
	s.Active = false
	s.Phase = state.PhaseEnded
	s.Winner = winner
	s.Payout = payout
	s.EndedHeight = st.Height

	if !payout.IsZero() {
		if err := bank.Credit(winner, payout); err != nil {
			return events.Event{}, ErrOverflow.Wrap(err.Error())
		}
	}
	return events.SessionEnded(id, winner, payout), nil
}

package app

import (
	sdkmath "cosmossdk.io/math"

	"pokerescrow/internal/events"
	"pokerescrow/internal/state"
)

// joinSession escrows payment from actor's balance into the pot. Joining is
// only possible before the dealer starts the session.
func joinSession(st *state.State, id uint64, actor string, payment sdkmath.Uint) (events.Event, error) {
	if actor == "" {
		return events.Event{}, ErrInvalidParameter.Wrap("missing player")
	}
	s, err := activeSession(st, id)
	if err != nil {
		return events.Event{}, err
	}
	if s.Phase != state.PhaseCreated {
		return events.Event{}, ErrInvalidState.Wrapf("session %d is %s; joins closed", id, s.Phase)
	}
	if !payment.Equal(s.BuyIn) {
		return events.Event{}, ErrIncorrectStake.Wrapf("payment=%s buyIn=%s", payment, s.BuyIn)
	}
	if s.FindPlayer(actor) != nil {
		return events.Event{}, ErrDuplicateMember.Wrapf("%s in session %d", actor, id)
	}
	pot, err := addUintChecked(s.Pot, payment, "pot")
	if err != nil {
		return events.Event{}, err
	}
	if err := st.Debit(actor, payment); err != nil {
		return events.Event{}, ErrInsufficientFunds.Wrap(err.Error())
	}

	s.Players = append(s.Players, state.Player{
		Address:      actor,
		Contribution: payment,
		RoundBet:     sdkmath.ZeroUint(),
	})
	s.Pot = pot
	return events.PlayerJoined(id, actor, payment), nil
}

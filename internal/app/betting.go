package app

import (
	sdkmath "cosmossdk.io/math"

	"pokerescrow/internal/events"
	"pokerescrow/internal/state"
)

func requireDealer(s *state.Session, actor string) error {
	if actor != s.Dealer {
		return ErrUnauthorized.Wrapf("session %d: %q", s.ID, actor)
	}
	return nil
}

// startSession opens preflop betting. At least one player must have joined.
func startSession(st *state.State, id uint64, actor string) (events.Event, error) {
	s, err := getSession(st, id)
	if err != nil {
		return events.Event{}, err
	}
	if err := requireDealer(s, actor); err != nil {
		return events.Event{}, err
	}
	if !s.Active || s.Phase != state.PhaseCreated {
		return events.Event{}, ErrInvalidState.Wrapf("session %d is %s", id, s.Phase)
	}
	if len(s.Players) == 0 {
		return events.Event{}, ErrInvalidState.Wrapf("session %d has no players", id)
	}
	s.Phase = state.PhasePreFlop
	return events.SessionStarted(id), nil
}

// applyAction validates and applies one betting move by actor.
func applyAction(st *state.State, id uint64, actor string, act Action) (events.Event, error) {
	s, err := activeSession(st, id)
	if err != nil {
		return events.Event{}, err
	}
	if !s.Phase.IsBetting() {
		return events.Event{}, ErrInvalidState.Wrapf("session %d is %s; betting closed", id, s.Phase)
	}
	p := s.FindPlayer(actor)
	if p == nil || p.Folded {
		return events.Event{}, ErrNotActivePlayer.Wrapf("%q in session %d", actor, id)
	}

	switch a := act.(type) {
	case Bet:
		if err := placeBet(st, s, p, a.Amount); err != nil {
			return events.Event{}, err
		}
		return events.PlayerAction(id, actor, a.Kind(), a.Amount), nil

	case Raise:
		if s.CurrentBet.IsZero() {
			return events.Event{}, ErrInvalidState.Wrap("no bet to raise")
		}
		if err := placeBet(st, s, p, a.Amount); err != nil {
			return events.Event{}, err
		}
		return events.PlayerAction(id, actor, a.Kind(), a.Amount), nil

	case Call:
		if !p.RoundBet.LT(s.CurrentBet) {
			return events.Event{}, ErrNothingToCall.Wrapf("currentBet=%s already matched", s.CurrentBet)
		}
		delta := s.CurrentBet.Sub(p.RoundBet)
		if err := escrow(st, s, p, delta); err != nil {
			return events.Event{}, err
		}
		p.RoundBet = s.CurrentBet
		return events.PlayerAction(id, actor, a.Kind(), delta), nil

	case Fold:
		p.Folded = true
		return events.PlayerAction(id, actor, a.Kind(), sdkmath.ZeroUint()), nil

	default:
		return events.Event{}, ErrInvalidRequest.Wrapf("unsupported action %T", act)
	}
}

// placeBet raises the standing bet to amount and escrows the full amount.
func placeBet(st *state.State, s *state.Session, p *state.Player, amount sdkmath.Uint) error {
	if !amount.GT(s.CurrentBet) {
		return ErrBetTooLow.Wrapf("amount=%s currentBet=%s", amount, s.CurrentBet)
	}
	if err := escrow(st, s, p, amount); err != nil {
		return err
	}
	s.CurrentBet = amount
	p.RoundBet = amount
	return nil
}

// escrow moves amount from the player's balance into the pot.
func escrow(st *state.State, s *state.Session, p *state.Player, amount sdkmath.Uint) error {
	contribution, err := addUintChecked(p.Contribution, amount, "contribution")
	if err != nil {
		return err
	}
	pot, err := addUintChecked(s.Pot, amount, "pot")
	if err != nil {
		return err
	}
	if err := st.Debit(p.Address, amount); err != nil {
		return ErrInsufficientFunds.Wrap(err.Error())
	}
	p.Contribution = contribution
	s.Pot = pot
	return nil
}

// advanceRound moves to the next street and resets the standing bet.
func advanceRound(st *state.State, id uint64, actor string) (events.Event, error) {
	s, err := getSession(st, id)
	if err != nil {
		return events.Event{}, err
	}
	if err := requireDealer(s, actor); err != nil {
		return events.Event{}, err
	}
	if !s.Active {
		return events.Event{}, ErrInvalidState.Wrapf("session %d has ended", id)
	}
	next, ok := s.Phase.Next()
	if !ok {
		return events.Event{}, ErrInvalidState.Wrapf("cannot advance from %s", s.Phase)
	}
	s.Phase = next
	s.CurrentBet = sdkmath.ZeroUint()
	for i := range s.Players {
		s.Players[i].RoundBet = sdkmath.ZeroUint()
	}
	return events.RoundAdvanced(id, string(next)), nil
}

package app

import (
	sdkmath "cosmossdk.io/math"

	"pokerescrow/internal/events"
	"pokerescrow/internal/state"
)

// createSession allocates the next sequential id and stores a fresh session
// owned by dealer.
func createSession(st *state.State, dealer string, buyIn sdkmath.Uint) (uint64, events.Event, error) {
	if dealer == "" {
		return 0, events.Event{}, ErrInvalidParameter.Wrap("missing dealer")
	}
	if buyIn.IsZero() {
		return 0, events.Event{}, ErrInvalidParameter.Wrap("buyIn must be > 0")
	}
	id := st.NextSessionID
	if id == 0 {
		id = 1
	}
	next, err := addUint64Checked(id, 1, "nextSessionId")
	if err != nil {
		return 0, events.Event{}, err
	}
	if _, exists := st.Sessions[id]; exists {
		return 0, events.Event{}, ErrInvalidState.Wrapf("session %d already exists", id)
	}

	st.Sessions[id] = state.NewSession(id, dealer, buyIn, st.Height)
	st.NextSessionID = next
	return id, events.SessionCreated(id, dealer, buyIn), nil
}

// getSession is read-only.
func getSession(st *state.State, id uint64) (*state.Session, error) {
	s := st.Sessions[id]
	if s == nil {
		return nil, ErrNotFound.Wrapf("session %d", id)
	}
	return s, nil
}

// activeSession additionally rejects sessions that were already settled.
func activeSession(st *state.State, id uint64) (*state.Session, error) {
	s, err := getSession(st, id)
	if err != nil {
		return nil, err
	}
	if !s.Active || s.Phase == state.PhaseEnded {
		return nil, ErrInvalidState.Wrapf("session %d has ended", id)
	}
	return s, nil
}

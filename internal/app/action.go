package app

import (
	sdkmath "cosmossdk.io/math"
)

// Action is one betting move. The set is closed: only the types in this file
// implement it, and applyAction handles each of them.
type Action interface {
	// Kind is the label carried by PlayerAction notifications.
	Kind() string
	isAction()
}

type Bet struct {
	Amount sdkmath.Uint
}

type Call struct{}

type Raise struct {
	Amount sdkmath.Uint
}

type Fold struct{}

func (Bet) Kind() string   { return "Bet" }
func (Call) Kind() string  { return "Call" }
func (Raise) Kind() string { return "Raise" }
func (Fold) Kind() string  { return "Fold" }

func (Bet) isAction()   {}
func (Call) isAction()  {}
func (Raise) isAction() {}
func (Fold) isAction()  {}

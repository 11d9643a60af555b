package game

import "errors"

var ErrWrongPhase = errors.New("action not valid in current phase")
var ErrWrongTurn = errors.New("not this player's action")
var ErrWrongOrigin = errors.New("player driven by a different input source")
var ErrNoPending = errors.New("no pending decision")
var ErrGameAlreadyCompleted = errors.New("game already completed")

package turn

import "github.com/DoyleJ11/monopoly-client/internal/game"

// Msg is the controller's inbox message set. Collaborators submit intents;
// everything else is posted internally by timers and service calls.
type Msg interface{ isTurnMsg() }

// Origin identifies which collaborator produced an intent. Actions for
// autoplayed players are only accepted from the scheduler, and actions for
// human players only from the view.
type Origin string

const (
	OriginView     Origin = "view"
	OriginAutoplay Origin = "autoplay"
)

type RequestRoll struct {
	Actor  int
	Origin Origin
}

func (RequestRoll) isTurnMsg() {}

type Decide struct {
	Actor  int
	Accept bool
	Origin Origin
}

func (Decide) isTurnMsg() {}

// SyncState replaces the snapshot outside the turn cycle (the build
// passthrough). It is applied only while the controller is idle, so an
// in-flight turn can never be clobbered.
type SyncState struct {
	Snapshot game.GameSnapshot
	Messages []string
}

func (SyncState) isTurnMsg() {}

// SetToken swaps the bearer credential used on later service calls, for a
// view reopening the game with a refreshed credential.
type SetToken struct{ Token string }

func (SetToken) isTurnMsg() {}

type Join struct {
	ClientID string
	Outbox   chan StateChange // where this subscriber receives state changes
}

func (Join) isTurnMsg() {}

type Leave struct{ ClientID string }

func (Leave) isTurnMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isTurnMsg() {}

type Shutdown struct{}

func (Shutdown) isTurnMsg() {}

// Internal messages. Both carry the seq tag drawn when the timer or call
// was issued; the loop drops them if the tag has since moved on.

type diceSettled struct {
	seq  uint64
	dice [2]int
}

func (diceSettled) isTurnMsg() {}

type callKind string

const (
	callMove callKind = "move"
	callBuy  callKind = "buy"
)

type callResult struct {
	seq      uint64
	kind     callKind
	state    game.GameSnapshot
	messages []string
	offer    *game.PendingDecision
	bankrupt bool
	err      error
}

func (callResult) isTurnMsg() {}

// StateChange is broadcast to subscribers. Err is set, without a version
// bump, when a failure was surfaced instead of a transition. Bankrupt marks
// a move that eliminated the mover (the snapshot already reflects it).
type StateChange struct {
	Version  int
	Phase    game.TurnPhase
	Snapshot game.GameSnapshot
	Pending  *game.PendingDecision
	Messages []string
	Bankrupt bool
	Err      string
}

// View reflects controller state for a single reader without data races.
type View struct {
	Version         int
	NumClients      int
	Phase           game.TurnPhase
	Snapshot        game.GameSnapshot
	Pending         *game.PendingDecision
	Actor           game.Player
	ActorAutoplayed bool
}

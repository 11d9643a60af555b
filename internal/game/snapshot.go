package game

// TurnPhase is the controller's position in the turn state machine. It is
// the single source of truth for which intents are currently valid.
type TurnPhase string

const (
	PhaseIdle             TurnPhase = "idle"              // waiting for a roll
	PhaseRolling          TurnPhase = "rolling"           // dice animation in flight, no service call yet
	PhaseAwaitingDecision TurnPhase = "awaiting_decision" // a purchase offer is blocking the next roll
	PhaseSettling         TurnPhase = "settling"          // a service call is in flight
)

// Player mirrors the service's player JSON. IsComputer is fixed at game
// creation; computer players are driven by the autoplay scheduler only.
type Player struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Color      string   `json:"color"`
	Position   int      `json:"position"`
	Money      int      `json:"money"`
	Properties []string `json:"properties"`
	IsComputer bool     `json:"is_computer"`
	InJail     bool     `json:"in_jail"`
	JailTurns  int      `json:"jail_turns"`
}

// Space is one board entry as the service reports it. The controller never
// consults the board; it is carried so views can render ownership.
type Space struct {
	Position int    `json:"position"`
	Type     string `json:"type"`
	Price    int    `json:"price,omitempty"`
	Owner    *int   `json:"owner,omitempty"`
	Houses   int    `json:"houses,omitempty"`
}

// GameSnapshot is the last authoritative state confirmed by the service.
// It is replaced wholesale on every accepted response, never patched.
type GameSnapshot struct {
	CurrentPlayer int              `json:"currentPlayer"`
	Players       []Player         `json:"players"`
	Turn          int              `json:"turn"`
	Board         map[string]Space `json:"board"`
	Winner        *int             `json:"winner,omitempty"`
}

// PendingDecision is an outstanding buy/decline offer. PlayerID is the
// player who rolled: the service advances CurrentPlayer in the same move
// response that carries the offer, so the offer does not belong to the
// player whose turn slot is next.
type PendingDecision struct {
	PlayerID int    `json:"player_id"`
	Property string `json:"property"`
	Price    int    `json:"price"`
}

func (s GameSnapshot) Terminal() bool { return s.Winner != nil }

// Current returns the player occupying the active turn slot.
func (s GameSnapshot) Current() (Player, bool) {
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentPlayer], true
}

func (s GameSnapshot) ByID(id int) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// ExpectedActor returns the player expected to act next and whether that
// player is autoplayed. A pending decision takes priority over the turn
// slot.
func ExpectedActor(s GameSnapshot, pending *PendingDecision) (Player, bool) {
	if pending != nil {
		if p, ok := s.ByID(pending.PlayerID); ok {
			return p, p.IsComputer
		}
	}
	p, _ := s.Current()
	return p, p.IsComputer
}

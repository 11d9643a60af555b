package types

import "github.com/DoyleJ11/monopoly-client/internal/game"

// Client -> Server
//
// RollDice:
//   player_id: number
//
// Decide:
//   player_id: number
//   accept: boolean
//
// Build:
//   player_id: number
//   property: string
type ClientMessage struct {
	Type     string `json:"type"`
	PlayerID int    `json:"player_id"`
	Accept   bool   `json:"accept,omitempty"`
	Property string `json:"property,omitempty"`
}

// Server -> Client
//
// StateSnapshot:
//   version: number
//   phase: "idle" | "rolling" | "awaiting_decision" | "settling"
//   state: full game snapshot as last confirmed by the service
//   pending: outstanding purchase offer, if any
//   messages: narrative lines from the last applied response
//   bankrupt: the last move eliminated its mover
//
// Error:
//   error: string (phase/version reflect the state the failure reverted to)
type ServerMessage struct {
	Type     string                `json:"type"` // "StateSnapshot" | "Error"
	Version  int                   `json:"version,omitempty"`
	Phase    string                `json:"phase,omitempty"`
	State    *game.GameSnapshot    `json:"state,omitempty"`
	Pending  *game.PendingDecision `json:"pending,omitempty"`
	Messages []string              `json:"messages,omitempty"`
	Bankrupt bool                  `json:"bankrupt,omitempty"`
	Error    string                `json:"error,omitempty"`
}

package remote

import "github.com/DoyleJ11/monopoly-client/internal/game"

// Wire shapes for the service's loosely-typed JSON responses. Everything is
// mapped into the typed model at this boundary so nothing downstream ever
// branches on raw maps.

type wireOffer struct {
	Property string `json:"property"`
	Price    int    `json:"price"`
}

type wireActions struct {
	CanBuy   *wireOffer `json:"can_buy"`
	Bankrupt bool       `json:"bankrupt"`
}

type moveResponse struct {
	Messages []string          `json:"messages"`
	State    game.GameSnapshot `json:"state"`
	Actions  wireActions       `json:"actions"`
}

type callResponse struct {
	Message string            `json:"message"`
	State   game.GameSnapshot `json:"state"`
}

type wireGame struct {
	ID    int               `json:"id"`
	State game.GameSnapshot `json:"state"`
}

type createResponse struct {
	GameID int      `json:"game_id"`
	Game   wireGame `json:"game"`
}

type aiResponse struct {
	Action   string `json:"action"`
	Property string `json:"property"`
}

type errorResponse struct {
	Error string `json:"error"`
}

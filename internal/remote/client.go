package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/game"
)

// Rejection is an explicit refusal from the service: insufficient funds,
// property already owned, unknown game. Transport problems are returned as
// ordinary wrapped errors instead.
type Rejection struct {
	Status int
	Reason string
}

func (e *Rejection) Error() string {
	return fmt.Sprintf("service rejected request (%d): %s", e.Status, e.Reason)
}

// IsRejection reports whether err is a service refusal rather than a
// transport failure.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

// Client talks to the remote rules service. The bearer credential is
// supplied per call; the client never stores or validates it.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// MoveResult is a move response mapped to the typed model. Offer is non-nil
// when the mover may buy the space they landed on; the returned state has
// the turn already advanced either way.
type MoveResult struct {
	State    game.GameSnapshot
	Messages []string
	Offer    *game.PendingDecision
	Bankrupt bool
}

// CallResult is the common shape of buy and build responses.
type CallResult struct {
	State   game.GameSnapshot
	Message string
}

type CreatedGame struct {
	ID    int
	State game.GameSnapshot
}

// AIDecision is the service's chosen action for a delegated decision.
type AIDecision struct {
	Action   string
	Property string
}

func (c *Client) CreateGame(ctx context.Context, token string, names []string, humans, computers int) (CreatedGame, error) {
	body := map[string]any{
		"playerNames":        names,
		"numHumanPlayers":    humans,
		"numComputerPlayers": computers,
	}
	var resp createResponse
	if err := c.post(ctx, token, "/api/game/create", body, &resp); err != nil {
		return CreatedGame{}, err
	}
	return CreatedGame{ID: resp.GameID, State: resp.Game.State}, nil
}

func (c *Client) LoadGame(ctx context.Context, token string, gameID int) (game.GameSnapshot, error) {
	var resp wireGame
	if err := c.get(ctx, token, fmt.Sprintf("/api/game/%d", gameID), &resp); err != nil {
		return game.GameSnapshot{}, err
	}
	return resp.State, nil
}

// Move reports the client-drawn dice to the service, which resolves the
// actual movement, rent, cards and turn advancement.
func (c *Client) Move(ctx context.Context, token string, gameID, playerID int, dice [2]int) (MoveResult, error) {
	body := map[string]any{"player_id": playerID, "dice": dice[:]}
	var resp moveResponse
	if err := c.post(ctx, token, fmt.Sprintf("/api/game/%d/move", gameID), body, &resp); err != nil {
		return MoveResult{}, err
	}
	res := MoveResult{State: resp.State, Messages: resp.Messages, Bankrupt: resp.Actions.Bankrupt}
	if offer := resp.Actions.CanBuy; offer != nil {
		res.Offer = &game.PendingDecision{PlayerID: playerID, Property: offer.Property, Price: offer.Price}
	}
	return res, nil
}

func (c *Client) Buy(ctx context.Context, token string, gameID, playerID int, property string) (CallResult, error) {
	return c.propertyCall(ctx, token, fmt.Sprintf("/api/game/%d/buy", gameID), playerID, property)
}

func (c *Client) Build(ctx context.Context, token string, gameID, playerID int, property string) (CallResult, error) {
	return c.propertyCall(ctx, token, fmt.Sprintf("/api/game/%d/build", gameID), playerID, property)
}

func (c *Client) propertyCall(ctx context.Context, token, path string, playerID int, property string) (CallResult, error) {
	body := map[string]any{"player_id": playerID, "property": property}
	var resp callResponse
	if err := c.post(ctx, token, path, body, &resp); err != nil {
		return CallResult{}, err
	}
	return CallResult{State: resp.State, Message: resp.Message}, nil
}

// AIDecide delegates a decision to the service instead of a local policy.
func (c *Client) AIDecide(ctx context.Context, token string, gameID, playerID int, action, property string) (AIDecision, error) {
	body := map[string]any{"player_id": playerID, "action": action}
	if property != "" {
		body["property"] = property
	}
	var resp aiResponse
	if err := c.post(ctx, token, fmt.Sprintf("/api/game/%d/ai-move", gameID), body, &resp); err != nil {
		return AIDecision{}, err
	}
	return AIDecision{Action: resp.Action, Property: resp.Property}, nil
}

func (c *Client) post(ctx context.Context, token, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	return c.do(req, token, out)
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, token, out)
}

func (c *Client) do(req *http.Request, token string, out any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote service unreachable: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("remote call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode >= 400 {
		var er errorResponse
		if resp.StatusCode < 500 && json.NewDecoder(resp.Body).Decode(&er) == nil && er.Error != "" {
			return &Rejection{Status: resp.StatusCode, Reason: er.Error}
		}
		return fmt.Errorf("remote service returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode remote response: %w", err)
	}
	return nil
}

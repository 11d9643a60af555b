package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/monopoly-client/internal/game"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, nil)
}

func TestMoveMapsOfferAndState(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"messages": []string{"Alice rolled 6 and 2", "Alice landed on Virginia Ave"},
			"state": map[string]any{
				"currentPlayer": 1,
				"turn":          2,
				"players": []map[string]any{
					{"id": 1, "name": "Alice", "money": 1500, "position": 14},
					{"id": 2, "name": "Bob", "money": 1500},
				},
			},
			"actions": map[string]any{
				"can_buy": map[string]any{"property": "Virginia Ave", "price": 160},
			},
		})
	})

	res, err := c.Move(context.Background(), "secret", 7, 1, [2]int{6, 2})
	require.NoError(t, err)

	assert.Equal(t, "/api/game/7/move", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, float64(1), gotBody["player_id"])
	assert.Equal(t, []any{float64(6), float64(2)}, gotBody["dice"])

	assert.Equal(t, 1, res.State.CurrentPlayer)
	assert.Equal(t, 2, res.State.Turn)
	assert.Len(t, res.Messages, 2)
	require.NotNil(t, res.Offer)
	// the offer belongs to the mover even though the turn has advanced
	assert.Equal(t, game.PendingDecision{PlayerID: 1, Property: "Virginia Ave", Price: 160}, *res.Offer)
	assert.False(t, res.Bankrupt)
}

func TestMoveWithoutOffer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []string{"Bob paid $50 rent"},
			"state":    map[string]any{"currentPlayer": 0, "turn": 3},
			"actions":  map[string]any{},
		})
	})

	res, err := c.Move(context.Background(), "secret", 7, 2, [2]int{3, 1})
	require.NoError(t, err)
	assert.Nil(t, res.Offer)
	assert.Equal(t, 3, res.State.Turn)
}

func TestBuyRejectionIsTyped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/game/7/buy", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not enough money"})
	})

	_, err := c.Buy(context.Background(), "secret", 7, 1, "Boardwalk")
	require.Error(t, err)
	require.True(t, IsRejection(err))

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusBadRequest, rej.Status)
	assert.Equal(t, "Not enough money", rej.Reason)
}

func TestServerFailureIsNotRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Buy(context.Background(), "secret", 7, 1, "Boardwalk")
	require.Error(t, err)
	assert.False(t, IsRejection(err))
}

func TestTransportFailureIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening

	c := New(srv.URL, 500*time.Millisecond, nil)
	_, err := c.Move(context.Background(), "secret", 7, 1, [2]int{1, 1})
	require.Error(t, err)
	assert.False(t, IsRejection(err))
}

func TestCreateGame(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/game/create", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1), body["numHumanPlayers"])
		assert.Equal(t, float64(2), body["numComputerPlayers"])

		json.NewEncoder(w).Encode(map[string]any{
			"game_id": 42,
			"game": map[string]any{
				"id": 42,
				"state": map[string]any{
					"currentPlayer": 0,
					"turn":          1,
					"players": []map[string]any{
						{"id": 1, "name": "Alice", "money": 1500},
						{"id": 2, "name": "CPU 1", "money": 1500, "is_computer": true},
						{"id": 3, "name": "CPU 2", "money": 1500, "is_computer": true},
					},
				},
			},
		})
	})

	created, err := c.CreateGame(context.Background(), "secret", []string{"Alice"}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 42, created.ID)
	require.Len(t, created.State.Players, 3)
	assert.True(t, created.State.Players[1].IsComputer)
}

func TestLoadGame(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/game/42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":    42,
			"state": map[string]any{"currentPlayer": 1, "turn": 9},
		})
	})

	snap, err := c.LoadGame(context.Background(), "secret", 42)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentPlayer)
	assert.Equal(t, 9, snap.Turn)
}

func TestAIDecide(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/game/42/ai-move", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "buy", body["action"])
		assert.Equal(t, "St. James Place", body["property"])

		json.NewEncoder(w).Encode(map[string]string{
			"action":   "buy",
			"property": "St. James Place",
		})
	})

	dec, err := c.AIDecide(context.Background(), "secret", 42, 2, "buy", "St. James Place")
	require.NoError(t, err)
	assert.Equal(t, "buy", dec.Action)
}

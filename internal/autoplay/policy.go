package autoplay

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/game"
	"github.com/DoyleJ11/monopoly-client/internal/remote"
)

// Policy decides whether an autoplayed player takes a purchase offer.
type Policy interface {
	ShouldBuy(ctx context.Context, p game.Player, offer game.PendingDecision) bool
}

// AcceptAffordable buys anything the player can pay for. Default policy.
type AcceptAffordable struct{}

func (AcceptAffordable) ShouldBuy(_ context.Context, p game.Player, offer game.PendingDecision) bool {
	return p.Money >= offer.Price
}

// Balanced keeps a cash buffer and takes cheap properties eagerly,
// expensive ones sometimes.
type Balanced struct{}

func (Balanced) ShouldBuy(_ context.Context, p game.Player, offer game.PendingDecision) bool {
	if p.Money < offer.Price+500 {
		return false
	}
	if offer.Price*10 < p.Money*4 { // under 40% of cash
		return true
	}
	return rand.Float64() < 0.7
}

// Remote delegates the decision to the service's ai endpoint. Declines on
// any failure so an unreachable endpoint cannot wedge the turn.
type Remote struct {
	Client *remote.Client
	Token  string
	GameID int
	Log    *zap.Logger
}

func (r Remote) ShouldBuy(ctx context.Context, p game.Player, offer game.PendingDecision) bool {
	dec, err := r.Client.AIDecide(ctx, r.Token, r.GameID, p.ID, "buy", offer.Property)
	if err != nil {
		if r.Log != nil {
			r.Log.Warn("remote decision failed, declining", zap.Error(err))
		}
		return false
	}
	return dec.Action == "buy"
}

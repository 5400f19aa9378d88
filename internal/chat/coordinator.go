// Package chat drives the per-session turn state machine: idle sessions
// are routed through the LLM, sessions awaiting parameters merge what the
// user supplied and either prompt again or dispatch to a backend.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/format"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/policy"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/prompts"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/session"
)

// IntentRouter classifies a free-text message. Implementations must not
// fail outward; failures are carried inside the result.
type IntentRouter interface {
	Route(ctx context.Context, message string) *models.RouterResult
}

// Dispatcher invokes the backend service for a resolved intent.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent models.Intent, params models.ParamBag) (*models.BackendResult, error)
}

// Coordinator owns the conversational state machine. All access to a
// session's pending turn is serialized through a per-session mutex, so
// concurrent requests for one session cannot lose updates.
type Coordinator struct {
	router     IntentRouter
	dispatcher Dispatcher
	store      session.Store
	locks      *session.KeyedMutex
}

// NewCoordinator wires the state machine over its collaborators.
func NewCoordinator(router IntentRouter, dispatcher Dispatcher, store session.Store) *Coordinator {
	return &Coordinator{
		router:     router,
		dispatcher: dispatcher,
		store:      store,
		locks:      session.NewKeyedMutex(),
	}
}

// HandleMessage processes one user turn for a session and always produces
// a reply; business failures come back as reply text.
func (c *Coordinator) HandleMessage(ctx context.Context, sessionID, message string, supplied models.ParamBag) *models.ChatReply {
	c.locks.Lock(sessionID)
	defer c.locks.Unlock(sessionID)

	turn, err := c.store.Get(ctx, sessionID)
	if err != nil {
		// Degrade to fresh routing rather than failing the turn.
		log.Printf("session %s: pending state unavailable, routing fresh: %v", sessionID, err)
		turn = nil
	}

	if turn != nil {
		return c.resumeTurn(ctx, sessionID, turn, supplied)
	}
	return c.startTurn(ctx, sessionID, message)
}

// resumeTurn merges newly supplied values into an awaiting turn. The
// pending intent is sticky: the message is never re-routed through the
// LLM until the turn completes.
func (c *Coordinator) resumeTurn(ctx context.Context, sessionID string, turn *models.PendingTurn, supplied models.ParamBag) *models.ChatReply {
	if turn.Collected == nil {
		turn.Collected = models.ParamBag{}
	}
	turn.Collected.Merge(supplied)

	remaining := policy.Unmet(turn.Required, turn.Collected)
	if len(remaining) > 0 {
		turn.Required = remaining
		if err := c.store.Put(ctx, sessionID, turn); err != nil {
			return &models.ChatReply{Reply: fmt.Sprintf("Error saving conversation state: %v", err)}
		}
		return &models.ChatReply{
			Reply:     fmt.Sprintf("I still need: %s.", strings.Join(remaining, ", ")),
			AskParams: true,
			Required:  remaining,
			Optional:  turn.Optional,
		}
	}

	// All requirements met: pop the turn before dispatching so no stale
	// collected state survives the call.
	if err := c.store.Delete(ctx, sessionID); err != nil {
		log.Printf("session %s: failed to clear pending turn: %v", sessionID, err)
	}
	return c.dispatch(ctx, turn.Intent, turn.Collected)
}

// startTurn routes a fresh message through the LLM and either dispatches,
// opens a pending turn, or asks the user to clarify.
func (c *Coordinator) startTurn(ctx context.Context, sessionID, message string) *models.ChatReply {
	routing := c.router.Route(ctx, message)
	if routing.Error != "" {
		log.Printf("session %s: router degraded to unknown: %s", sessionID, routing.Error)
	}

	if routing.Intent == models.IntentUnknown {
		return &models.ChatReply{Reply: prompts.ClarifyMessage}
	}

	spec := policy.For(routing.Intent, routing.Params)
	missing := spec.Missing()
	if len(missing) > 0 {
		turn := &models.PendingTurn{
			Intent:    routing.Intent,
			Collected: routing.Params.Clone(),
			Required:  missing,
			Optional:  spec.Optional,
		}
		if err := c.store.Put(ctx, sessionID, turn); err != nil {
			return &models.ChatReply{Reply: fmt.Sprintf("Error saving conversation state: %v", err)}
		}
		return &models.ChatReply{
			Reply:     fmt.Sprintf("Please provide the following: %s.", strings.Join(missing, ", ")),
			AskParams: true,
			Required:  missing,
			Optional:  spec.Optional,
		}
	}

	return c.dispatch(ctx, routing.Intent, routing.Params)
}

func (c *Coordinator) dispatch(ctx context.Context, intent models.Intent, params models.ParamBag) *models.ChatReply {
	result, err := c.dispatcher.Dispatch(ctx, intent, params)
	if err != nil {
		return &models.ChatReply{Reply: fmt.Sprintf("Error calling service: %v", err)}
	}
	return &models.ChatReply{Reply: format.Result(result)}
}

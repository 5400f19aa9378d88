package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/chat"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/config"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/prompts"
)

// NATSTransport serves the same chat contract over a NATS request/reply
// subject, for callers that sit inside the message bus rather than in a
// browser. Session identity travels in the request payload.
type NATSTransport struct {
	conn        *nats.Conn
	config      *config.Config
	coordinator *chat.Coordinator
}

func NewNATSTransport(cfg *config.Config, coordinator *chat.Coordinator) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Printf("Connected to NATS server: %s", cfg.NatsURL)

	return &NATSTransport{
		conn:        conn,
		config:      cfg,
		coordinator: coordinator,
	}, nil
}

func (nt *NATSTransport) Start() error {
	_, err := nt.conn.Subscribe(nt.config.NatsChatSubject, nt.handleChatRequest)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.NatsChatSubject, err)
	}

	log.Printf("Subscribed to subject: %s", nt.config.NatsChatSubject)
	return nil
}

func (nt *NATSTransport) handleChatRequest(msg *nats.Msg) {
	var request models.RemoteChatRequest
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		log.Printf("Error parsing chat request: %v", err)
		nt.respond(msg, &models.ChatReply{Reply: prompts.ClarifyMessage})
		return
	}
	if request.SessionID == "" || request.Message == "" {
		nt.respond(msg, &models.ChatReply{Reply: prompts.ClarifyMessage})
		return
	}

	log.Printf("Processing chat request for session: %s", request.SessionID)

	// One turn may cover an LLM call plus a backend call.
	ctx, cancel := context.WithTimeout(context.Background(), nt.config.AIHubTimeout+nt.config.BackendTimeout)
	defer cancel()

	reply := nt.coordinator.HandleMessage(ctx, request.SessionID, request.Message, request.Params)
	nt.respond(msg, reply)
}

func (nt *NATSTransport) respond(msg *nats.Msg, reply *models.ChatReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		log.Printf("Error marshaling reply: %v", err)
		return
	}

	if err := msg.Respond(data); err != nil {
		log.Printf("Error sending reply: %v", err)
	}
}

func (nt *NATSTransport) Close() error {
	if nt.conn != nil {
		nt.conn.Close()
		log.Println("NATS connection closed")
	}
	return nil
}

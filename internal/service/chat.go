package service

import (
	"context"
	"log/slog"
	"time"

	"nearby/internal/domain"
	"nearby/internal/dto"
	"nearby/internal/session"
	"nearby/internal/store"
)

// SessionDirectory is the slice of the session registry delivery needs.
type SessionDirectory interface {
	SessionsFor(userID int64) []session.Sender
	All() []session.Sender
}

type ChatService struct {
	store    *store.Store
	sessions SessionDirectory
	now      func() time.Time
}

func NewChatService(st *store.Store, sessions SessionDirectory) *ChatService {
	return &ChatService{store: st, sessions: sessions, now: time.Now}
}

// Send stamps the message with the server clock, persists it, and only
// then fans it out: receive_message to every session of the receiver,
// message_sent to every session of the sender. A persistence failure
// delivers nothing. An offline receiver still gets the durable write.
// Delivery is fire-and-forget; nothing about it is recorded.
func (c *ChatService) Send(ctx context.Context, senderID, receiverID int64, content string) (*domain.Message, error) {
	if senderID <= 0 || receiverID <= 0 || content == "" {
		return nil, domain.ErrValidation
	}
	msg := &domain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  c.now().UnixMilli(),
	}
	if err := c.store.Messages().Create(ctx, msg); err != nil {
		return nil, err
	}

	receive := dto.Event{Type: dto.EventReceiveMessage, Data: dto.ReceiveMessagePayload{
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}}
	for _, s := range c.sessions.SessionsFor(receiverID) {
		if !s.Send(receive) {
			slog.Warn("receive_message dropped", "receiver_id", receiverID)
		}
	}

	confirm := dto.Event{Type: dto.EventMessageSent, Data: dto.MessageSentPayload{
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		Timestamp:  msg.Timestamp,
	}}
	for _, s := range c.sessions.SessionsFor(senderID) {
		if !s.Send(confirm) {
			slog.Warn("message_sent dropped", "sender_id", senderID)
		}
	}
	return msg, nil
}

// History returns the stored conversation between two users, both
// directions, oldest first.
func (c *ChatService) History(ctx context.Context, userID, peerID int64) ([]dto.MessageRecord, error) {
	if userID <= 0 || peerID <= 0 {
		return nil, domain.ErrValidation
	}
	msgs, err := c.store.Messages().Conversation(ctx, userID, peerID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MessageRecord, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, dto.MessageRecord{
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Content:    m.Content,
			Timestamp:  m.Timestamp,
		})
	}
	return out, nil
}

package dto

import "encoding/json"

// Event types carried over the websocket channel. Client to server:
// join, send_message. Server to client: receive_message, message_sent,
// location_update.
const (
	EventJoin           = "join"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventMessageSent    = "message_sent"
	EventLocationUpdate = "location_update"
)

// Event is the outbound envelope.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// InboundEvent defers payload decoding until the type is known.
type InboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type JoinPayload struct {
	UserID int64 `json:"userId"`
}

type SendMessagePayload struct {
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}

type ReceiveMessagePayload struct {
	SenderID  int64  `json:"senderId"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type MessageSentPayload struct {
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
}

type LocationUpdatePayload struct {
	UserID int64   `json:"userId"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

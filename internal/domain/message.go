package domain

// Message is written exactly once on send and never mutated. Two messages
// sharing a millisecond timestamp have no defined relative order; history
// reads break the tie by insertion id.
type Message struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   int64  `gorm:"not null;index:idx_messages_sender_ts,priority:1" json:"senderId"`
	ReceiverID int64  `gorm:"not null;index:idx_messages_receiver_ts,priority:1" json:"receiverId"`
	Content    string `gorm:"not null" json:"content"`
	Timestamp  int64  `gorm:"not null;index:idx_messages_sender_ts,priority:2;index:idx_messages_receiver_ts,priority:2" json:"timestamp"` // epoch millis, server-assigned
}

func (Message) TableName() string { return "messages" }

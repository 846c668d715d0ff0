package models

import "time"

// User represents a chat participant. Accounts are provisioned out of band
// (seeded at startup); there is no signup flow and no password hashing. The
// login compare happens client-side against the plaintext value.
type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"password"`
}

// TableName returns the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Message is a persisted chat message between two users. SenderID and
// ReceiverID are not validated against the users table. The Read flag is
// flipped only by the read-receipt endpoint, never by the live channel.
type Message struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"not null" json:"content"`
	SenderID   int       `gorm:"not null;column:sender_id" json:"senderId"`
	ReceiverID int       `gorm:"not null;column:receiver_id" json:"receiverId"`
	Timestamp  time.Time `gorm:"autoCreateTime" json:"timestamp"`
	Read       bool      `gorm:"not null;default:false" json:"read"`
}

// TableName returns the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

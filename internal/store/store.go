package store

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/parleychat/parley/internal/models"
)

// ErrNotFound is returned when a requested user or message does not exist.
var ErrNotFound = errors.New("record not found")

// Store provides access to users and messages in the relational database.
// All writes are single-row inserts or updates; there is no caching layer.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the users and messages tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(id int) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &user, nil
}

// GetAllUsers retrieves every user, ordered by ID.
func (s *Store) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateMessage persists a new message with a server-assigned timestamp and
// read=false, and returns the stored record. Sender and receiver IDs are not
// checked against the users table. A write that fails with a transient
// connection error is retried exactly once; any other failure, or a failed
// retry, is returned to the caller.
func (s *Store) CreateMessage(content string, senderID, receiverID int) (*models.Message, error) {
	msg := &models.Message{
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Timestamp:  time.Now(),
		Read:       false,
	}

	if err := s.db.Create(msg).Error; err != nil {
		if !isTransient(err) {
			return nil, fmt.Errorf("failed to create message: %w", err)
		}
		log.Printf("Transient error creating message, retrying: %v", err)
		msg.ID = 0
		if err := s.db.Create(msg).Error; err != nil {
			return nil, fmt.Errorf("failed to create message after retry: %w", err)
		}
	}
	return msg, nil
}

// GetMessages retrieves all messages exchanged between two users, in
// ascending timestamp order. The pair is symmetric: (a, b) and (b, a)
// return the same history.
func (s *Store) GetMessages(userID1, userID2 int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("timestamp asc").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	return messages, nil
}

// MarkMessageAsRead sets the read flag on a message.
func (s *Store) MarkMessageAsRead(messageID int) error {
	result := s.db.Model(&models.Message{}).Where("id = ?", messageID).Update("read", true)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to mark message as read: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// isTransient reports whether a write failed on a dropped connection. The
// substring match mirrors the driver's wording for a terminated backend.
func isTransient(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "connection terminated")
}

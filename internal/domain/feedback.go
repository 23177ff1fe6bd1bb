package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackType distinguishes bug reports from feature requests.
type FeedbackType string

const (
	FeedbackBug     FeedbackType = "bug"
	FeedbackFeature FeedbackType = "feature"
)

// FeedbackStatus is the triage state of a feedback item.
type FeedbackStatus string

const (
	StatusNew        FeedbackStatus = "new"
	StatusInProgress FeedbackStatus = "in-progress"
	StatusAddressed  FeedbackStatus = "addressed"
	StatusClosed     FeedbackStatus = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s FeedbackStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusAddressed, StatusClosed:
		return true
	}
	return false
}

// Open is true until an item is addressed or closed.
func (s FeedbackStatus) Open() bool {
	return s != StatusAddressed && s != StatusClosed
}

type FeedbackPriority string

const (
	PriorityHigh   FeedbackPriority = "high"
	PriorityMedium FeedbackPriority = "medium"
	PriorityLow    FeedbackPriority = "low"
)

func (p FeedbackPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// FeedbackItem is a bug report or feature request submitted from the mobile app.
// The app writes these documents; the admin console only reads them and updates
// status, priority and notes.
type FeedbackItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      FeedbackType       `bson:"type" json:"type"`
	Status    FeedbackStatus     `bson:"status" json:"status"`
	Priority  FeedbackPriority   `bson:"priority,omitempty" json:"priority,omitempty"`
	Message   string             `bson:"message" json:"message"`
	UserID    string             `bson:"userId,omitempty" json:"userId,omitempty"`
	UserEmail string             `bson:"userEmail,omitempty" json:"userEmail,omitempty"`
	Notes     []FeedbackNote     `bson:"notes,omitempty" json:"notes"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FeedbackNote is an internal triage note appended by an administrator.
type FeedbackNote struct {
	Text    string    `bson:"text" json:"text"`
	AddedBy string    `bson:"addedBy" json:"addedBy"`
	AddedAt time.Time `bson:"addedAt" json:"addedAt"`
}

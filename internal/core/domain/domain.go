package domain

import (
	"sort"
	"strings"
	"time"
)

type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// User is the registered identity. The password hash is opaque to the
// conversation engine and never serialized outward.
type User struct {
	ID             string          `bson:"_id" json:"_id"`
	Name           string          `bson:"name" json:"name"`
	Email          string          `bson:"email" json:"email"`
	Password       string          `bson:"password" json:"-"`
	Avatar         string          `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Friends        []string        `bson:"friends" json:"friends"`
	FriendRequests []FriendRequest `bson:"friendRequests" json:"friendRequests"`
}

type FriendRequest struct {
	From   string              `bson:"from" json:"from"`
	Status FriendRequestStatus `bson:"status" json:"status"`
}

func (u *User) IsFriend(userID string) bool {
	for _, f := range u.Friends {
		if f == userID {
			return true
		}
	}
	return false
}

// Conversation is a chat thread. A direct conversation has exactly two
// participants and IsGroup=false; admins are meaningful for groups only.
type Conversation struct {
	ID           string         `bson:"_id" json:"_id"`
	Name         string         `bson:"name,omitempty" json:"name,omitempty"`
	IsGroup      bool           `bson:"isGroup" json:"isGroup"`
	Participants []string       `bson:"participants" json:"participants"`
	Admins       []string       `bson:"admins,omitempty" json:"admins,omitempty"`
	LastMessage  string         `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	UnreadCount  map[string]int `bson:"unreadCount" json:"unreadCount"`
	CreatedAt    time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updatedAt"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant resolves the peer of a direct conversation. The second
// return is false when the peer cannot be determined from the stored
// participant set.
func (c *Conversation) OtherParticipant(senderID string) (string, bool) {
	for _, p := range c.Participants {
		if p != senderID {
			return p, true
		}
	}
	return "", false
}

func (c *Conversation) IsAdmin(userID string) bool {
	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}
	return false
}

// Message belongs to exactly one conversation by id reference. The
// receiver id survives only for the legacy direct mode without a
// conversation record.
type Message struct {
	ID             string        `bson:"_id" json:"_id"`
	SenderID       string        `bson:"sender_id" json:"sender_id"`
	ConversationID string        `bson:"conversation_id,omitempty" json:"conversation_id,omitempty"`
	ReceiverID     string        `bson:"receiver_id,omitempty" json:"receiver_id,omitempty"`
	Content        string        `bson:"content" json:"content"`
	Timestamp      time.Time     `bson:"timestamp" json:"timestamp"`
	Status         MessageStatus `bson:"status" json:"status"`
	DeliveredAt    *time.Time    `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	ReadAt         *time.Time    `bson:"readAt,omitempty" json:"readAt,omitempty"`
	ReplyTo        *ReplyRef     `bson:"replyTo,omitempty" json:"replyTo,omitempty"`
	Reactions      []Reaction    `bson:"reactions" json:"reactions"`
}

// ReplyRef is the denormalized snippet of the message being replied to.
type ReplyRef struct {
	MessageID  string `bson:"messageId" json:"messageId"`
	Content    string `bson:"content" json:"content"`
	SenderName string `bson:"senderName" json:"senderName"`
}

type Reaction struct {
	Emoji     string    `bson:"emoji" json:"emoji"`
	UserID    string    `bson:"userId" json:"userId"`
	UserName  string    `bson:"userName" json:"userName"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// RoomID returns the broadcast room a message belongs to: its
// conversation id, or the deterministic pair key in legacy direct mode.
func (m *Message) RoomID() string {
	if m.ConversationID != "" {
		return m.ConversationID
	}
	return DirectRoomKey(m.SenderID, m.ReceiverID)
}

// DirectRoomKey derives the room key for a legacy direct chat: the two
// user ids sorted lexicographically and hyphen-joined, so both sides
// compute the same key.
func DirectRoomKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "-")
}

// UserRef is the subset of User resolved into conversation and message
// listings (never includes credentials).
type UserRef struct {
	ID     string `bson:"_id" json:"_id"`
	Name   string `bson:"name" json:"name"`
	Avatar string `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// ConversationView is a conversation with participant and last-message
// data resolved, as returned by the listing operation.
type ConversationView struct {
	Conversation
	ParticipantRefs []UserRef `json:"participantRefs"`
	LastMessageDoc  *Message  `json:"lastMessageDoc,omitempty"`
}

// MessageView is a message with its sender identity resolved.
type MessageView struct {
	Message
	Sender UserRef `json:"sender"`
}

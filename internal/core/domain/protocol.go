package domain

import "encoding/json"

// Inbound socket event names.
const (
	EventJoinChat         = "joinChat"
	EventJoinPrivateChat  = "joinPrivateChat"
	EventJoinUserRoom     = "joinUserRoom"
	EventSendMessage      = "sendMessage"
	EventMessageDelivered = "messageDelivered"
	EventMessagesRead     = "messagesRead"
	EventUserTyping       = "userTyping"
	EventToggleReaction   = "toggleReaction"
)

// Outbound socket event names.
const (
	EventLoadMessages          = "loadMessages"
	EventNewMessage            = "newMessage"
	EventPrivateMessage        = "privateMessage"
	EventStatusUpdated         = "statusUpdated"
	EventReactionUpdated       = "reactionUpdated"
	EventError                 = "error"
	EventFriendRemoved         = "friendRemoved"
	EventFriendRequestReceived = "friendRequestReceived"
	EventFriendRequestAccepted = "friendRequestAccepted"
	EventFriendRequestRejected = "friendRequestRejected"
)

// InboundEvent is the wire envelope read off a connection. Data stays
// raw until the router dispatches on the event name.
type InboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type OutboundEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type JoinChatPayload struct {
	ConversationID string `json:"conversationId"`
}

type JoinPrivateChatPayload struct {
	UserID     string `json:"userId"`
	ReceiverID string `json:"receiverId"`
}

type JoinUserRoomPayload struct {
	UserID string `json:"userId"`
}

// SendMessagePayload carries either a conversation id or, in legacy
// direct mode, a sender/receiver pair.
type SendMessagePayload struct {
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Content        string    `json:"content"`
	ReplyTo        *ReplyRef `json:"replyTo,omitempty"`
}

type MessageDeliveredPayload struct {
	MessageIDs []string `json:"messageIds"`
}

type MessagesReadPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

type UserTypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	IsTyping       bool   `json:"isTyping"`
}

type ToggleReactionPayload struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Emoji     string `json:"emoji"`
}

type StatusUpdatedPayload struct {
	MessageID string        `json:"messageId"`
	Status    MessageStatus `json:"status"`
}

type ReactionUpdatedPayload struct {
	MessageID string     `json:"messageId"`
	Reactions []Reaction `json:"reactions"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EffectKind tags the delivery mode of an outbound effect.
type EffectKind int

const (
	// EffectToOrigin sends point-to-point back to the connection whose
	// event triggered the effect.
	EffectToOrigin EffectKind = iota
	// EffectToRoom broadcasts to every member connection of a room.
	EffectToRoom
	// EffectToRoomExceptOrigin broadcasts to a room minus the
	// triggering connection.
	EffectToRoomExceptOrigin
	// EffectToUser sends to every connection registered on a user
	// channel.
	EffectToUser
)

// Effect is one outbound delivery produced by dispatching an inbound
// event. Dispatch returns effects as values so the core stays testable
// without a live transport.
type Effect struct {
	Kind   EffectKind
	Room   string
	UserID string
	Event  OutboundEvent
}

func ToOrigin(event string, data any) Effect {
	return Effect{Kind: EffectToOrigin, Event: OutboundEvent{Event: event, Data: data}}
}

func ToRoom(room, event string, data any) Effect {
	return Effect{Kind: EffectToRoom, Room: room, Event: OutboundEvent{Event: event, Data: data}}
}

func ToRoomExceptOrigin(room, event string, data any) Effect {
	return Effect{Kind: EffectToRoomExceptOrigin, Room: room, Event: OutboundEvent{Event: event, Data: data}}
}

func ToUser(userID, event string, data any) Effect {
	return Effect{Kind: EffectToUser, UserID: userID, Event: OutboundEvent{Event: event, Data: data}}
}

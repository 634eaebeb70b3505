package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

type ConversationRepo struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewConversationRepo(db *mongo.Database, timeout time.Duration) *ConversationRepo {
	return &ConversationRepo{col: db.Collection(conversationsCollection), timeout: timeout}
}

func (r *ConversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return domain.ErrStorage(err)
	}
	return nil
}

func (r *ConversationRepo) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	var c domain.Conversation
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrConversationNotFound
		}
		return nil, domain.ErrStorage(err)
	}
	return &c, nil
}

func (r *ConversationRepo) FindForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	// Equality on an array field matches membership.
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, domain.ErrStorage(err)
	}
	var convs []domain.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, domain.ErrStorage(err)
	}
	return convs, nil
}

func (r *ConversationRepo) SetLastMessage(ctx context.Context, convID, messageID string) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": convID}, bson.M{
		"$set": bson.M{"lastMessage": messageID, "updatedAt": time.Now()},
	})
	if err != nil {
		return domain.ErrStorage(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepo) IncrementUnread(ctx context.Context, convID string, userIDs []string) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	inc := bson.M{}
	for _, id := range userIDs {
		inc["unreadCount."+id] = 1
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": convID}, bson.M{"$inc": inc})
	if err != nil {
		return domain.ErrStorage(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepo) ClearUnread(ctx context.Context, convID, userID string) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": convID}, bson.M{
		"$set": bson.M{"unreadCount." + userID: 0},
	})
	if err != nil {
		return domain.ErrStorage(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

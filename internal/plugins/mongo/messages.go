package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

type MessageRepo struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMessageRepo(db *mongo.Database, timeout time.Duration) *MessageRepo {
	return &MessageRepo{col: db.Collection(messagesCollection), timeout: timeout}
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return domain.ErrStorage(err)
	}
	return nil
}

func (r *MessageRepo) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	var m domain.Message
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrMessageNotFound
		}
		return nil, domain.ErrStorage(err)
	}
	return &m, nil
}

func (r *MessageRepo) FindByConversation(ctx context.Context, convID string) ([]domain.Message, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"conversation_id": convID}, opts)
	if err != nil {
		return nil, domain.ErrStorage(err)
	}
	var msgs []domain.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, domain.ErrStorage(err)
	}
	return msgs, nil
}

func (r *MessageRepo) FindDirectBetween(ctx context.Context, userID, receiverID string) ([]domain.Message, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	filter := bson.M{
		"conversation_id": bson.M{"$exists": false},
		"$or": bson.A{
			bson.M{"sender_id": userID, "receiver_id": receiverID},
			bson.M{"sender_id": receiverID, "receiver_id": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.ErrStorage(err)
	}
	var msgs []domain.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, domain.ErrStorage(err)
	}
	return msgs, nil
}

func (r *MessageRepo) FindNewestInConversation(ctx context.Context, convID string) (*domain.Message, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var m domain.Message
	err := r.col.FindOne(ctx, bson.M{"conversation_id": convID}, opts).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrMessageNotFound
		}
		return nil, domain.ErrStorage(err)
	}
	return &m, nil
}

// MarkDelivered reads the ids still in sent, then applies the bulk
// update with the same status filter. A message transitioned by a
// concurrent call between the two steps simply drops out of both.
func (r *MessageRepo) MarkDelivered(ctx context.Context, messageIDs []string, at time.Time) ([]domain.Message, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	filter := bson.M{"_id": bson.M{"$in": messageIDs}, "status": domain.StatusSent}
	candidates, err := r.findFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	_, err = r.col.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"status": domain.StatusDelivered, "deliveredAt": at},
	})
	if err != nil {
		return nil, domain.ErrStorage(err)
	}
	for i := range candidates {
		candidates[i].Status = domain.StatusDelivered
		t := at
		candidates[i].DeliveredAt = &t
	}
	return candidates, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, convID, readerID string, at time.Time) ([]domain.Message, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	filter := bson.M{
		"conversation_id": convID,
		"sender_id":       bson.M{"$ne": readerID},
		"status":          bson.M{"$in": bson.A{domain.StatusSent, domain.StatusDelivered}},
	}
	candidates, err := r.findFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	_, err = r.col.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"status": domain.StatusRead, "readAt": at},
	})
	if err != nil {
		return nil, domain.ErrStorage(err)
	}
	for i := range candidates {
		candidates[i].Status = domain.StatusRead
		t := at
		candidates[i].ReadAt = &t
	}
	return candidates, nil
}

func (r *MessageRepo) SetReactions(ctx context.Context, messageID string, reactions []domain.Reaction) (*domain.Message, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m domain.Message
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": messageID}, bson.M{
		"$set": bson.M{"reactions": reactions},
	}, opts).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrMessageNotFound
		}
		return nil, domain.ErrStorage(err)
	}
	return &m, nil
}

func (r *MessageRepo) findFiltered(ctx context.Context, filter bson.M) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.ErrStorage(err)
	}
	var msgs []domain.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, domain.ErrStorage(err)
	}
	return msgs, nil
}

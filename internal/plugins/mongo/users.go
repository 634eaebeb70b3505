package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/DaniRico987/Sagittarius/internal/core/domain"
)

type UserRepo struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewUserRepo(db *mongo.Database, timeout time.Duration) *UserRepo {
	return &UserRepo{col: db.Collection(usersCollection), timeout: timeout}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return domain.ErrStorage(err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	var u domain.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrStorage(err)
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	var u domain.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrStorage(err)
	}
	return &u, nil
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, domain.ErrStorage(err)
	}
	var users []domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, domain.ErrStorage(err)
	}
	return users, nil
}

func (r *UserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, domain.ErrStorage(err)
	}
	var users []domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, domain.ErrStorage(err)
	}
	return users, nil
}

func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return domain.ErrStorage(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

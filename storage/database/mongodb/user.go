package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edupulse/edupulse/core/user"
)

type userRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepository{coll: db.Collection(UserCollectionName)}
}

func userFilter(filter user.QueryFilter) bson.M {
	f := bson.M{}
	if filter.Role != "" {
		f["role"] = filter.Role
	}
	return f
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.coll.InsertOne(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	f := bson.M{}
	if filter.ID != "" {
		f["_id"] = filter.ID
	}
	if filter.Email != "" {
		f["email"] = filter.Email
	}
	if len(f) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	err := repo.coll.FindOne(ctx, f).Decode(&usr)
	switch {
	case err == nil:
		return usr, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return user.User{}, user.ErrNotFound
	default:
		return user.User{}, errors.Wrap(err, "finding user")
	}
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	cur, err := repo.coll.Find(ctx, userFilter(filter), newestFirst)
	if err != nil {
		return nil, errors.Wrap(err, "finding users")
	}
	users := make([]user.User, 0)
	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	return users, nil
}

func (repo *userRepository) CountUsers(ctx context.Context, filter user.QueryFilter) (int, error) {
	n, err := repo.coll.CountDocuments(ctx, userFilter(filter))
	return int(n), errors.Wrap(err, "counting users")
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": usr.ID}, bson.M{"$set": bson.M{
		"name":          usr.Name,
		"email":         usr.Email,
		"role":          usr.Role,
		"password_hash": usr.PasswordHash,
		"updated_at":    usr.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

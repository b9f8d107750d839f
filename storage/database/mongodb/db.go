// Package mongorepos implements the repositories on MongoDB.
package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edupulse/edupulse/core"
)

const (
	UserCollectionName       = "users"
	CourseCollectionName     = "courses"
	EnrollmentCollectionName = "enrollments"
)

// Open connects to uri, pings the server and makes sure the collection indexes exist.
// Connecting and pinging must finish within connectTimeout.
func Open(ctx context.Context, uri, dbName string, connectTimeout time.Duration) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "pinging mongo")
	}

	db := client.Database(dbName)
	if err = EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return db, nil
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UserCollectionName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CourseCollectionName: {
			{Keys: bson.D{{Key: "instructor_id", Value: 1}}},
			{Keys: bson.D{{Key: "is_published", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		EnrollmentCollectionName: {
			{
				Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "course_id", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

func sortBy(ords ...core.DBOrdering) *options.FindOptions {
	keys := make(bson.D, 0, len(ords))
	for _, ord := range ords {
		keys = append(keys, bson.E{Key: ord.Field, Value: ord.Direction()})
	}
	return options.Find().SetSort(keys)
}

var (
	byID        = core.DBOrdering{Field: "_id"}
	newestFirst = sortBy(core.DBOrdering{Field: "created_at"}, byID)
)

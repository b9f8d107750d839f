package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/enrollment"
)

type enrollmentRepository struct {
	coll *mongo.Collection
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *mongo.Database) enrollment.Repository {
	return &enrollmentRepository{coll: db.Collection(EnrollmentCollectionName)}
}

func enrollmentFilter(filter enrollment.QueryFilter) bson.M {
	f := bson.M{}
	if filter.StudentID != "" {
		f["student_id"] = filter.StudentID
	}
	if filter.CourseID != "" {
		f["course_id"] = filter.CourseID
	}
	return f
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	if _, err := repo.coll.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo *enrollmentRepository) findOne(ctx context.Context, filter bson.M) (enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	err := repo.coll.FindOne(ctx, filter).Decode(&e)
	switch {
	case err == nil:
		return e, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	default:
		return enrollment.Enrollment{}, errors.Wrap(err, "finding enrollment")
	}
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, id string) (enrollment.Enrollment, error) {
	return repo.findOne(ctx, bson.M{"_id": id})
}

func (repo *enrollmentRepository) FindEnrollment(ctx context.Context, studentID, courseID string) (enrollment.Enrollment, error) {
	return repo.findOne(ctx, bson.M{"student_id": studentID, "course_id": courseID})
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	opts := sortBy(core.DBOrdering{Field: "enrolled_at"}, byID)
	cur, err := repo.coll.Find(ctx, enrollmentFilter(filter), opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding enrollments")
	}
	enrollments := make([]enrollment.Enrollment, 0)
	if err = cur.All(ctx, &enrollments); err != nil {
		return nil, errors.Wrap(err, "decoding enrollments")
	}
	return enrollments, nil
}

func (repo *enrollmentRepository) CountEnrollments(ctx context.Context, filter enrollment.QueryFilter) (int, error) {
	n, err := repo.coll.CountDocuments(ctx, enrollmentFilter(filter))
	return int(n), errors.Wrap(err, "counting enrollments")
}

func (repo *enrollmentRepository) UpdateProgress(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	set := bson.M{
		"progress":            e.Progress,
		"progress_percentage": e.ProgressPercentage,
	}
	update := bson.M{"$inc": bson.M{"version": 1}}
	if e.CompletedAt != nil {
		set["completed_at"] = *e.CompletedAt
	} else {
		update["$unset"] = bson.M{"completed_at": ""}
	}
	update["$set"] = set

	var updated enrollment.Enrollment
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": e.ID, "version": e.Version}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		// either gone or moved on
		if _, gErr := repo.GetEnrollment(ctx, e.ID); gErr != nil {
			return enrollment.Enrollment{}, gErr
		}
		return enrollment.Enrollment{}, enrollment.ErrVersionMismatch
	default:
		return enrollment.Enrollment{}, errors.Wrap(err, "updating enrollment progress")
	}
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if res.DeletedCount == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo *enrollmentRepository) DeleteEnrollments(ctx context.Context, filter enrollment.QueryFilter) (int, error) {
	f := enrollmentFilter(filter)
	if len(f) == 0 {
		return 0, errors.New("deleting enrollments: empty filter")
	}
	res, err := repo.coll.DeleteMany(ctx, f)
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollments")
	}
	return int(res.DeletedCount), nil
}

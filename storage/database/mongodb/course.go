package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edupulse/edupulse/core/course"
)

type courseRepository struct {
	coll *mongo.Collection
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *mongo.Database) course.Repository {
	return &courseRepository{coll: db.Collection(CourseCollectionName)}
}

func courseFilter(filter course.QueryFilter) bson.M {
	f := bson.M{}
	if filter.InstructorID != "" {
		f["instructor_id"] = filter.InstructorID
	}
	if filter.PublishedOnly {
		f["is_published"] = true
	}
	return f
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	if crs.EnrolledStudents == nil {
		crs.EnrolledStudents = []string{}
	}
	if _, err := repo.coll.InsertOne(ctx, crs); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&crs)
	switch {
	case err == nil:
		if crs.EnrolledStudents == nil {
			crs.EnrolledStudents = []string{}
		}
		return crs, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return course.Course{}, course.ErrNotFound
	default:
		return course.Course{}, errors.Wrap(err, "finding course")
	}
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	cur, err := repo.coll.Find(ctx, courseFilter(filter), newestFirst)
	if err != nil {
		return nil, errors.Wrap(err, "finding courses")
	}
	courses := make([]course.Course, 0)
	if err = cur.All(ctx, &courses); err != nil {
		return nil, errors.Wrap(err, "decoding courses")
	}
	return courses, nil
}

func (repo *courseRepository) CountCourses(ctx context.Context, filter course.QueryFilter) (int, error) {
	n, err := repo.coll.CountDocuments(ctx, courseFilter(filter))
	return int(n), errors.Wrap(err, "counting courses")
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	update := bson.M{"$set": bson.M{
		"title":        crs.Title,
		"description":  crs.Description,
		"category":     crs.Category,
		"level":        crs.Level,
		"thumbnail":    crs.Thumbnail,
		"modules":      crs.Modules,
		"is_published": crs.IsPublished,
		"updated_at":   crs.UpdatedAt,
	}}
	var updated course.Course
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": crs.ID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return course.Course{}, course.ErrNotFound
	default:
		return course.Course{}, errors.Wrap(err, "updating course")
	}
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if res.DeletedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) AddStudent(ctx context.Context, courseID, studentID string) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{"$push": bson.M{"enrolled_students": studentID}})
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	if res.MatchedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}

// RemoveStudent drops the first occurrence only, which $pull cannot do: the pipeline keeps every
// element whose index differs from the index of studentID.
func (repo *courseRepository) RemoveStudent(ctx context.Context, courseID, studentID string) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "enrolled_students", Value: bson.D{{Key: "$let", Value: bson.D{
			{Key: "vars", Value: bson.D{
				{Key: "idx", Value: bson.D{{Key: "$indexOfArray", Value: bson.A{"$enrolled_students", studentID}}}},
			}},
			{Key: "in", Value: bson.D{{Key: "$map", Value: bson.D{
				{Key: "input", Value: bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: bson.D{{Key: "$range", Value: bson.A{0, bson.D{{Key: "$size", Value: "$enrolled_students"}}}}}},
					{Key: "as", Value: "i"},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$i", "$$idx"}}}},
				}}}},
				{Key: "as", Value: "i"},
				{Key: "in", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$enrolled_students", "$$i"}}}},
			}}}},
		}}}}}}},
	}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": courseID}, pipeline)
	if err != nil {
		return errors.Wrap(err, "removing student")
	}
	if res.MatchedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}

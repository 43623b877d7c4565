package repositories

import (
	"context"
	"time"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIssueRepository implements IssueRepository for MongoDB. Each issue
// collection maps to a Mongo collection of the same name.
type MongoIssueRepository struct {
	db *mongo.Database
}

// NewMongoIssueRepository creates a new MongoIssueRepository
func NewMongoIssueRepository(db *mongo.Database) *MongoIssueRepository {
	return &MongoIssueRepository{db: db}
}

// EnsureIndexes creates the indexes listings and counts rely on.
func (r *MongoIssueRepository) EnsureIndexes(ctx context.Context) error {
	for _, name := range models.IssueCollections {
		_, err := r.db.Collection(name).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "district", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "votes", Value: -1}}},
			{Keys: bson.D{{Key: "reporterId", Value: 1}}},
		})
		if err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	_, err := r.db.Collection(votesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "issueId", Value: 1}, {Key: "direction", Value: 1}},
	})
	return errors.Wrap(err, "create vote index")
}

// CreateIssue inserts the issue into issue.Collection and fills in its id.
func (r *MongoIssueRepository) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if !validCollection(issue.Collection) {
		return errors.Errorf("unknown issue collection %q", issue.Collection)
	}
	issue.ID = primitive.NewObjectID().Hex()
	issue.CreatedAt = time.Now().UTC()
	if issue.Status == "" {
		issue.Status = models.StatusPending
	}
	_, err := r.db.Collection(issue.Collection).InsertOne(ctx, issue)
	return errors.Wrap(err, "insert issue")
}

// FindIssue searches the issue collections in lookup order.
func (r *MongoIssueRepository) FindIssue(ctx context.Context, id string) (*models.Issue, error) {
	for _, name := range models.IssueCollections {
		var issue models.Issue
		err := r.db.Collection(name).FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "find issue in %s", name)
		}
		issue.Collection = name
		return &issue, nil
	}
	return nil, apperrors.NotFound("issue")
}

func (r *MongoIssueRepository) ListIssues(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	findOptions := options.Find().SetLimit(listLimit(filter))
	if filter.Sort == models.SortVotes {
		findOptions.SetSort(bson.D{{Key: "votes", Value: -1}, {Key: "createdAt", Value: -1}})
	} else {
		findOptions.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	return listAcross(ctx, filter, func(ctx context.Context, coll string) ([]models.Issue, error) {
		cursor, err := r.db.Collection(coll).Find(ctx, mongoIssueFilter(filter), findOptions)
		if err != nil {
			return nil, errors.Wrapf(err, "list %s", coll)
		}
		defer cursor.Close(ctx)

		var issues []models.Issue
		if err = cursor.All(ctx, &issues); err != nil {
			return nil, errors.Wrapf(err, "decode %s", coll)
		}
		return issues, nil
	})
}

func (r *MongoIssueRepository) CountIssues(ctx context.Context, filter models.IssueFilter) (int64, error) {
	return countAcross(ctx, filter, func(ctx context.Context, coll string) (int64, error) {
		n, err := r.db.Collection(coll).CountDocuments(ctx, mongoIssueFilter(filter))
		return n, errors.Wrapf(err, "count %s", coll)
	})
}

func (r *MongoIssueRepository) UpdateStatus(ctx context.Context, ref models.IssueRef, status models.IssueStatus) error {
	if !validCollection(ref.Collection) {
		return apperrors.NotFound("issue")
	}
	res, err := r.db.Collection(ref.Collection).UpdateOne(ctx,
		bson.M{"_id": ref.ID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return errors.Wrap(err, "update issue status")
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("issue")
	}
	return nil
}

func (r *MongoIssueRepository) CountByReporter(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"reporterId": bson.M{"$exists": true, "$ne": ""}}}},
		{{Key: "$group", Value: bson.M{"_id": "$reporterId", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.db.Collection(models.ProfiledIssues).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate reporters")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ReporterID string `bson:"_id"`
		Count      int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode reporter counts")
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ReporterID] = row.Count
	}
	return counts, nil
}

func mongoIssueFilter(filter models.IssueFilter) bson.M {
	m := bson.M{}
	if filter.State != "" {
		m["state"] = filter.State
	}
	if filter.District != "" {
		m["district"] = filter.District
	}
	if filter.Category != "" {
		m["category"] = filter.Category
	}
	if filter.ReporterID != "" {
		m["reporterId"] = filter.ReporterID
	}
	if statuses := statusesOf(filter); len(statuses) == 1 {
		m["status"] = statuses[0]
	} else if len(statuses) > 1 {
		m["status"] = bson.M{"$in": statuses}
	}
	return m
}

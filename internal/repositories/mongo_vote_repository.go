package repositories

import (
	"context"
	"time"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	votesCollection = "votes"
	// Upper bound on how long the driver keeps retrying a conflicted tally.
	tallyTimeout = 10 * time.Second
)

// MongoVoteRepository keeps vote records in a single "votes" collection keyed
// by models.VoteKey. Tallies run in multi-document transactions, which need a
// replica set or sharded cluster.
type MongoVoteRepository struct {
	client *mongo.Client
	db     *mongo.Database
	votes  *mongo.Collection
}

// NewMongoVoteRepository creates a new MongoVoteRepository
func NewMongoVoteRepository(client *mongo.Client, db *mongo.Database) *MongoVoteRepository {
	return &MongoVoteRepository{client: client, db: db, votes: db.Collection(votesCollection)}
}

func (r *MongoVoteRepository) GetVote(ctx context.Context, ref models.IssueRef, userID string) (models.VoteDirection, error) {
	var vote models.Vote
	err := r.votes.FindOne(ctx, bson.M{"_id": models.VoteKey(ref.ID, userID)}).Decode(&vote)
	if err == mongo.ErrNoDocuments {
		return models.VoteNone, nil
	}
	if err != nil {
		return models.VoteNone, errors.Wrap(err, "find vote")
	}
	return vote.Direction, nil
}

func (r *MongoVoteRepository) Tally(ctx context.Context, ref models.IssueRef, userID string, fn TallyFunc) (*models.Tally, error) {
	if !validCollection(ref.Collection) {
		return nil, apperrors.NotFound("issue")
	}

	session, err := r.client.StartSession()
	if err != nil {
		return nil, errors.Wrap(err, "start session")
	}
	defer session.EndSession(context.Background())

	tctx, cancel := context.WithTimeout(ctx, tallyTimeout)
	defer cancel()

	txnOptions := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	issues := r.db.Collection(ref.Collection)
	key := models.VoteKey(ref.ID, userID)

	result, err := session.WithTransaction(tctx, func(sc mongo.SessionContext) (interface{}, error) {
		var issue struct {
			VoteCount int64 `bson:"votes"`
		}
		err := issues.FindOne(sc, bson.M{"_id": ref.ID}, options.FindOne().SetProjection(bson.M{"votes": 1})).Decode(&issue)
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("issue")
		}
		if err != nil {
			return nil, err
		}

		var prior models.Vote
		err = r.votes.FindOne(sc, bson.M{"_id": key}).Decode(&prior)
		if err != nil && err != mongo.ErrNoDocuments {
			return nil, err
		}

		count, direction := fn(issue.VoteCount, prior.Direction)

		if direction == models.VoteNone {
			if _, err := r.votes.DeleteOne(sc, bson.M{"_id": key}); err != nil {
				return nil, err
			}
		} else {
			vote := models.Vote{
				ID:        key,
				IssueID:   ref.ID,
				UserID:    userID,
				Direction: direction,
				UpdatedAt: time.Now().UTC(),
			}
			if _, err := r.votes.ReplaceOne(sc, bson.M{"_id": key}, vote, options.Replace().SetUpsert(true)); err != nil {
				return nil, err
			}
		}

		if _, err := issues.UpdateOne(sc, bson.M{"_id": ref.ID}, bson.M{"$set": bson.M{"votes": count}}); err != nil {
			return nil, err
		}
		return &models.Tally{IssueID: ref.ID, VoteCount: count, Vote: direction}, nil
	}, txnOptions)
	if err != nil {
		return nil, classifyMongoTxnError(ctx, err)
	}
	return result.(*models.Tally), nil
}

func (r *MongoVoteRepository) CountVotes(ctx context.Context, ref models.IssueRef) (up, down int64, err error) {
	up, err = r.votes.CountDocuments(ctx, bson.M{"issueId": ref.ID, "direction": models.VoteUp})
	if err != nil {
		return 0, 0, errors.Wrap(err, "count up votes")
	}
	down, err = r.votes.CountDocuments(ctx, bson.M{"issueId": ref.ID, "direction": models.VoteDown})
	if err != nil {
		return 0, 0, errors.Wrap(err, "count down votes")
	}
	return up, down, nil
}

// classifyMongoTxnError reports retries the driver gave up on as
// ErrTransientConflict so callers can ask the client to try again.
func classifyMongoTxnError(ctx context.Context, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorLabel("TransientTransactionError") || se.HasErrorLabel("UnknownTransactionCommitResult")) {
		return errors.Wrap(apperrors.ErrTransientConflict, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return errors.Wrap(apperrors.ErrTransientConflict, "vote transaction timed out")
	}
	return errors.Wrap(err, "vote transaction")
}

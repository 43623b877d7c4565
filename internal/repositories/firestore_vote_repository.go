package repositories

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const tallyAttempts = 5

// FirestoreVoteRepository stores a user's vote at <collection>/<issue>/votes/<uid>.
type FirestoreVoteRepository struct {
	client *firestore.Client
}

func NewFirestoreVoteRepository(client *firestore.Client) *FirestoreVoteRepository {
	return &FirestoreVoteRepository{client: client}
}

func (r *FirestoreVoteRepository) issueDoc(ref models.IssueRef) *firestore.DocumentRef {
	if ref.ID == "" || !validCollection(ref.Collection) {
		return nil
	}
	return r.client.Collection(ref.Collection).Doc(ref.ID)
}

func (r *FirestoreVoteRepository) refs(ref models.IssueRef, userID string) (issue, vote *firestore.DocumentRef) {
	issue = r.issueDoc(ref)
	if issue == nil || userID == "" {
		return nil, nil
	}
	return issue, issue.Collection(votesCollection).Doc(userID)
}

func (r *FirestoreVoteRepository) GetVote(ctx context.Context, ref models.IssueRef, userID string) (models.VoteDirection, error) {
	_, voteDoc := r.refs(ref, userID)
	if voteDoc == nil {
		return models.VoteNone, nil
	}
	snap, err := voteDoc.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.VoteNone, nil
	}
	if err != nil {
		return models.VoteNone, errors.Wrap(err, "get vote")
	}
	var vote models.Vote
	if err := snap.DataTo(&vote); err != nil {
		return models.VoteNone, errors.Wrap(err, "decode vote")
	}
	return vote.Direction, nil
}

func (r *FirestoreVoteRepository) Tally(ctx context.Context, ref models.IssueRef, userID string, fn TallyFunc) (*models.Tally, error) {
	issueDoc, voteDoc := r.refs(ref, userID)
	if issueDoc == nil || voteDoc == nil {
		return nil, apperrors.NotFound("issue")
	}

	var tally *models.Tally
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		issueSnap, err := tx.Get(issueDoc)
		if status.Code(err) == codes.NotFound {
			return apperrors.NotFound("issue")
		}
		if err != nil {
			return err
		}
		var issue struct {
			VoteCount int64 `firestore:"votes"`
		}
		if err := issueSnap.DataTo(&issue); err != nil {
			return err
		}

		var prior models.Vote
		voteSnap, err := tx.Get(voteDoc)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			if err := voteSnap.DataTo(&prior); err != nil {
				return err
			}
		}

		count, direction := fn(issue.VoteCount, prior.Direction)

		if direction == models.VoteNone {
			if err := tx.Delete(voteDoc); err != nil {
				return err
			}
		} else {
			err := tx.Set(voteDoc, map[string]interface{}{
				"direction": string(direction),
				"updatedAt": firestore.ServerTimestamp,
			})
			if err != nil {
				return err
			}
		}
		if err := tx.Update(issueDoc, []firestore.Update{{Path: "votes", Value: count}}); err != nil {
			return err
		}

		tally = &models.Tally{IssueID: ref.ID, VoteCount: count, Vote: direction}
		return nil
	}, firestore.MaxAttempts(tallyAttempts))
	if err != nil {
		return nil, classifyFirestoreTxnError(err)
	}
	return tally, nil
}

// classifyFirestoreTxnError maps a transaction that stayed contended after
// every attempt to ErrTransientConflict.
func classifyFirestoreTxnError(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if status.Code(err) == codes.Aborted {
		return errors.Wrap(apperrors.ErrTransientConflict, err.Error())
	}
	return errors.Wrap(err, "vote transaction")
}

func (r *FirestoreVoteRepository) CountVotes(ctx context.Context, ref models.IssueRef) (up, down int64, err error) {
	issueDoc := r.issueDoc(ref)
	if issueDoc == nil {
		return 0, 0, apperrors.NotFound("issue")
	}
	votes := issueDoc.Collection(votesCollection)

	up, err = countQuery(ctx, votes.Where("direction", "==", string(models.VoteUp)))
	if err != nil {
		return 0, 0, errors.Wrap(err, "count up votes")
	}
	down, err = countQuery(ctx, votes.Where("direction", "==", string(models.VoteDown)))
	if err != nil {
		return 0, 0, errors.Wrap(err, "count down votes")
	}
	return up, down, nil
}

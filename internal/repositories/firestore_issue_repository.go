package repositories

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreIssueRepository implements IssueRepository on Cloud Firestore. Issue
// documents live in the top-level collections named by models.IssueCollections.
type FirestoreIssueRepository struct {
	client *firestore.Client
}

func NewFirestoreIssueRepository(client *firestore.Client) *FirestoreIssueRepository {
	return &FirestoreIssueRepository{client: client}
}

// issueDoc returns nil for ids Firestore cannot address.
func (r *FirestoreIssueRepository) issueDoc(ref models.IssueRef) *firestore.DocumentRef {
	if ref.ID == "" || !validCollection(ref.Collection) {
		return nil
	}
	return r.client.Collection(ref.Collection).Doc(ref.ID)
}

func (r *FirestoreIssueRepository) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if !validCollection(issue.Collection) {
		return errors.Errorf("unknown issue collection %q", issue.Collection)
	}
	doc := r.client.Collection(issue.Collection).NewDoc()
	issue.ID = doc.ID
	issue.CreatedAt = time.Now().UTC()
	if issue.Status == "" {
		issue.Status = models.StatusPending
	}
	_, err := doc.Create(ctx, issue)
	return errors.Wrap(err, "create issue")
}

func (r *FirestoreIssueRepository) FindIssue(ctx context.Context, id string) (*models.Issue, error) {
	for _, name := range models.IssueCollections {
		doc := r.issueDoc(models.IssueRef{Collection: name, ID: id})
		if doc == nil {
			break
		}
		snap, err := doc.Get(ctx)
		if status.Code(err) == codes.NotFound {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "get issue from %s", name)
		}
		issue, err := decodeIssue(snap, name)
		if err != nil {
			return nil, err
		}
		return issue, nil
	}
	return nil, apperrors.NotFound("issue")
}

func (r *FirestoreIssueRepository) ListIssues(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	return listAcross(ctx, filter, func(ctx context.Context, coll string) ([]models.Issue, error) {
		q := firestoreIssueQuery(r.client.Collection(coll).Query, filter)
		if filter.Sort == models.SortVotes {
			q = q.OrderBy("votes", firestore.Desc)
		}
		q = q.OrderBy("createdAt", firestore.Desc).Limit(int(listLimit(filter)))

		snaps, err := q.Documents(ctx).GetAll()
		if err != nil {
			return nil, errors.Wrapf(err, "list %s", coll)
		}
		issues := make([]models.Issue, 0, len(snaps))
		for _, snap := range snaps {
			issue, err := decodeIssue(snap, coll)
			if err != nil {
				return nil, err
			}
			issues = append(issues, *issue)
		}
		return issues, nil
	})
}

func (r *FirestoreIssueRepository) CountIssues(ctx context.Context, filter models.IssueFilter) (int64, error) {
	return countAcross(ctx, filter, func(ctx context.Context, coll string) (int64, error) {
		q := firestoreIssueQuery(r.client.Collection(coll).Query, filter)
		n, err := countQuery(ctx, q)
		return n, errors.Wrapf(err, "count %s", coll)
	})
}

func (r *FirestoreIssueRepository) UpdateStatus(ctx context.Context, ref models.IssueRef, s models.IssueStatus) error {
	doc := r.issueDoc(ref)
	if doc == nil {
		return apperrors.NotFound("issue")
	}
	_, err := doc.Update(ctx, []firestore.Update{{Path: "status", Value: string(s)}})
	if status.Code(err) == codes.NotFound {
		return apperrors.NotFound("issue")
	}
	return errors.Wrap(err, "update issue status")
}

func (r *FirestoreIssueRepository) CountByReporter(ctx context.Context) (map[string]int64, error) {
	snaps, err := r.client.Collection(models.ProfiledIssues).Select("reporterId").Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Wrap(err, "list reporters")
	}
	counts := make(map[string]int64)
	for _, snap := range snaps {
		id, _ := snap.DataAt("reporterId")
		if uid, ok := id.(string); ok && uid != "" {
			counts[uid]++
		}
	}
	return counts, nil
}

func decodeIssue(snap *firestore.DocumentSnapshot, coll string) (*models.Issue, error) {
	var issue models.Issue
	if err := snap.DataTo(&issue); err != nil {
		return nil, errors.Wrapf(err, "decode issue %s", snap.Ref.ID)
	}
	issue.ID = snap.Ref.ID
	issue.Collection = coll
	return &issue, nil
}

func firestoreIssueQuery(q firestore.Query, filter models.IssueFilter) firestore.Query {
	if filter.State != "" {
		q = q.Where("state", "==", filter.State)
	}
	if filter.District != "" {
		q = q.Where("district", "==", filter.District)
	}
	if filter.Category != "" {
		q = q.Where("category", "==", filter.Category)
	}
	if filter.ReporterID != "" {
		q = q.Where("reporterId", "==", filter.ReporterID)
	}
	if statuses := statusesOf(filter); len(statuses) == 1 {
		q = q.Where("status", "==", string(statuses[0]))
	} else if len(statuses) > 1 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		q = q.Where("status", "in", values)
	}
	return q
}

// countQuery runs a server-side count aggregation.
func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, errors.Errorf("unexpected count result %T", res["all"])
	}
	return v.GetIntegerValue(), nil
}

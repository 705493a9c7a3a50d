// internal/app/store/websites/websitestore.go
package websitestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/vort/internal/app/system/normalize"
	"github.com/dalemusser/vort/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("websites")}
}

var (
	// ErrDuplicateCertificationID is returned when the generated
	// certification id collides with an existing one. Callers retry
	// with a fresh code.
	ErrDuplicateCertificationID = errors.New("certification id already in use")

	// ErrAlreadyCertified is returned when a certification id is
	// already set for the website.
	ErrAlreadyCertified = errors.New("website already has a certification id")
)

// Create inserts a new website in the inProgress phase.
func (s *Store) Create(ctx context.Context, w models.Website) (models.Website, error) {
	w.ID = primitive.NewObjectID()
	w.BaseURL = normalize.URL(w.BaseURL)
	for i, u := range w.AdditionalURLs {
		w.AdditionalURLs[i] = normalize.URL(u)
	}
	w.Phase = models.WebsitePhaseInProgress
	w.IsCompleted = false
	w.IsDarkPatternFree = false

	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, w); err != nil {
		return models.Website{}, err
	}
	return w, nil
}

// GetByID loads a website by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Website, error) {
	var w models.Website
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListByUser returns the websites submitted by a client, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Website, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

// ListByExpert returns the websites an expert is assigned to, newest first.
func (s *Store) ListByExpert(ctx context.Context, expertID primitive.ObjectID) ([]models.Website, error) {
	return s.list(ctx, bson.M{"expert_ids": expertID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Website, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var websites []models.Website
	if err := cur.All(ctx, &websites); err != nil {
		return nil, err
	}
	return websites, nil
}

// AssignExperts overwrites the expert roster for a website. The
// previous roster is replaced wholesale; the primary expert leads the
// review and is the only one allowed to publish.
func (s *Store) AssignExperts(ctx context.Context, id primitive.ObjectID, expertIDs []primitive.ObjectID, primaryExpertID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"expert_ids":        expertIDs,
		"primary_expert_id": primaryExpertID,
		"updated_at":        time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// VoteDirection selects which vote list a toggle applies to.
type VoteDirection int

const (
	VoteUp VoteDirection = iota
	VoteDown
)

// ToggleVote records a user's vote on a website. Voting the same
// direction twice removes the vote; voting the opposite direction moves
// it. Returns the updated vote lists.
func (s *Store) ToggleVote(ctx context.Context, id primitive.ObjectID, voterID string, dir VoteDirection) (upVotes, downVotes []string, err error) {
	w, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	votes, other := w.UpVotes, w.DownVotes
	if dir == VoteDown {
		votes, other = w.DownVotes, w.UpVotes
	}

	if contains(votes, voterID) {
		votes = remove(votes, voterID)
	} else {
		votes = append(votes, voterID)
		other = remove(other, voterID)
	}

	if dir == VoteUp {
		upVotes, downVotes = votes, other
	} else {
		upVotes, downVotes = other, votes
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"up_votes":   upVotes,
		"down_votes": downVotes,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return nil, nil, err
	}
	return upVotes, downVotes, nil
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, e := range list {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}

// Publish marks the review as complete and records the verdict. The
// database write commits before any notification goes out, so a failed
// email never rolls back the publish.
func (s *Store) Publish(ctx context.Context, id primitive.ObjectID, darkPatternFree bool, expertFeedback string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"phase":                models.WebsitePhasePublished,
		"is_completed":         true,
		"is_dark_pattern_free": darkPatternFree,
		"expert_feedback":      expertFeedback,
		"updated_at":           time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetCertificationID records a certification id, guarded two ways: the
// filter refuses a website that already has one, and the unique sparse
// index refuses a code another website already holds.
func (s *Store) SetCertificationID(ctx context.Context, id primitive.ObjectID, certificationID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "certification_id": bson.M{"$in": bson.A{nil, ""}}},
		bson.M{"$set": bson.M{
			"certification_id": certificationID,
			"updated_at":       time.Now(),
		}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateCertificationID
		}
		return err
	}
	if res.MatchedCount == 0 {
		// Either the website is gone or it already has an id.
		w, gerr := s.GetByID(ctx, id)
		if gerr != nil {
			return gerr
		}
		if w.CertificationID != "" {
			return ErrAlreadyCertified
		}
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClientKPI aggregates counts for a client's dashboard.
type ClientKPI struct {
	TotalWebsites      int64 `json:"totalWebsites"`
	WebsitesInProgress int64 `json:"websitesInProgress"`
	WebsitesCertified  int64 `json:"websitesCertified"`
	WebsitesRejected   int64 `json:"websitesRejected"`
}

// CountForClient computes dashboard figures for one client's websites.
func (s *Store) CountForClient(ctx context.Context, clientID primitive.ObjectID) (ClientKPI, error) {
	var kpi ClientKPI
	var err error

	owner := bson.M{"user_id": clientID}
	if kpi.TotalWebsites, err = s.c.CountDocuments(ctx, owner); err != nil {
		return ClientKPI{}, err
	}
	if kpi.WebsitesInProgress, err = s.c.CountDocuments(ctx, bson.M{
		"user_id": clientID,
		"phase":   models.WebsitePhaseInProgress,
	}); err != nil {
		return ClientKPI{}, err
	}
	if kpi.WebsitesCertified, err = s.c.CountDocuments(ctx, bson.M{
		"user_id":              clientID,
		"is_completed":         true,
		"is_dark_pattern_free": true,
	}); err != nil {
		return ClientKPI{}, err
	}
	if kpi.WebsitesRejected, err = s.c.CountDocuments(ctx, bson.M{
		"user_id":              clientID,
		"is_completed":         true,
		"is_dark_pattern_free": false,
	}); err != nil {
		return ClientKPI{}, err
	}
	return kpi, nil
}

// ExpertKPI aggregates counts for an expert's dashboard. The pattern
// count comes from the pattern store; the caller fills it in.
type ExpertKPI struct {
	TotalWebsitesAssigned   int64 `json:"totalWebsitesAssigned"`
	TotalInProgressWebsites int64 `json:"totalInProgressWebsites"`
	TotalPublishedWebsites  int64 `json:"totalPublishedWebsites"`
	TotalPatternsCreated    int64 `json:"totalPatternsCreated"`
}

// CountForExpert computes the website figures for one expert.
func (s *Store) CountForExpert(ctx context.Context, expertID primitive.ObjectID) (ExpertKPI, error) {
	var kpi ExpertKPI
	var err error

	assigned := bson.M{"expert_ids": expertID}
	if kpi.TotalWebsitesAssigned, err = s.c.CountDocuments(ctx, assigned); err != nil {
		return ExpertKPI{}, err
	}
	if kpi.TotalInProgressWebsites, err = s.c.CountDocuments(ctx, bson.M{
		"expert_ids": expertID,
		"phase":      models.WebsitePhaseInProgress,
	}); err != nil {
		return ExpertKPI{}, err
	}
	if kpi.TotalPublishedWebsites, err = s.c.CountDocuments(ctx, bson.M{
		"expert_ids": expertID,
		"phase":      models.WebsitePhasePublished,
	}); err != nil {
		return ExpertKPI{}, err
	}
	return kpi, nil
}

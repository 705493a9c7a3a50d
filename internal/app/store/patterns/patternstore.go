// internal/app/store/patterns/patternstore.go
package patternstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/vort/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("patterns")}
}

var (
	// ErrAlreadyVerified is returned when a verdict arrives for a
	// pattern whose review already closed.
	ErrAlreadyVerified = errors.New("pattern is already verified")

	// ErrNoVerificationSlot is returned when the expert submitting a
	// verdict was not on the website's roster when the pattern was
	// created.
	ErrNoVerificationSlot = errors.New("expert has no verification slot on this pattern")
)

// Create inserts a finding. The verification roster is snapshotted from
// the website's expert list at creation time: later roster changes do
// not alter who reviews an existing pattern.
func (s *Store) Create(ctx context.Context, p models.Pattern, rosterExpertIDs []primitive.ObjectID) (models.Pattern, error) {
	p.ID = primitive.NewObjectID()
	p.PatternPhase = models.PatternPhaseInProgress
	p.IsPatternExists = false
	p.Verifications = newVerifications(rosterExpertIDs)

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Pattern{}, err
	}
	return p, nil
}

// CreateMany inserts a batch of findings in one write. Used by the
// automated pattern ingestion path; every entry snapshots the same
// roster.
func (s *Store) CreateMany(ctx context.Context, patterns []models.Pattern, rosterExpertIDs []primitive.ObjectID) ([]models.Pattern, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	now := time.Now()
	docs := make([]any, 0, len(patterns))
	for i := range patterns {
		patterns[i].ID = primitive.NewObjectID()
		patterns[i].PatternPhase = models.PatternPhaseInProgress
		patterns[i].IsPatternExists = false
		patterns[i].Verifications = newVerifications(rosterExpertIDs)
		patterns[i].CreatedAt = now
		patterns[i].UpdatedAt = now
		docs = append(docs, patterns[i])
	}

	if _, err := s.c.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return patterns, nil
}

func newVerifications(rosterExpertIDs []primitive.ObjectID) []models.ExpertVerification {
	verifications := make([]models.ExpertVerification, 0, len(rosterExpertIDs))
	for _, id := range rosterExpertIDs {
		verifications = append(verifications, models.ExpertVerification{
			ExpertID: id,
			Phase:    models.VerificationNotVerified,
		})
	}
	return verifications
}

// GetByID loads a pattern by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Pattern, error) {
	var p models.Pattern
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByWebsiteAndID loads a pattern scoped to its website. Returns
// mongo.ErrNoDocuments when the pattern exists under a different
// website.
func (s *Store) GetByWebsiteAndID(ctx context.Context, websiteID, patternID primitive.ObjectID) (*models.Pattern, error) {
	var p models.Pattern
	if err := s.c.FindOne(ctx, bson.M{"_id": patternID, "website_id": websiteID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByWebsite returns all findings for a website, newest first.
func (s *Store) ListByWebsite(ctx context.Context, websiteID primitive.ObjectID) ([]models.Pattern, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"website_id": websiteID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var patterns []models.Pattern
	if err := cur.All(ctx, &patterns); err != nil {
		return nil, err
	}
	return patterns, nil
}

// AllVerified reports whether every pattern for the website has
// completed verification. Vacuously true with no patterns.
func (s *Store) AllVerified(ctx context.Context, websiteID primitive.ObjectID) (allVerified, anyDark bool, err error) {
	patterns, err := s.ListByWebsite(ctx, websiteID)
	if err != nil {
		return false, false, err
	}
	allVerified = true
	for _, p := range patterns {
		if p.PatternPhase != models.PatternPhaseVerified {
			allVerified = false
		}
		if p.IsPatternExists {
			anyDark = true
		}
	}
	return allVerified, anyDark, nil
}

// RecordVerdict sets one expert's verdict on a pattern and recomputes
// the pattern phase. When the last open slot is filled the pattern
// transitions to verified and is_pattern_exists freezes to the OR of
// the confirming verdicts. A verified pattern never reverts.
func (s *Store) RecordVerdict(ctx context.Context, websiteID, patternID, expertID primitive.ObjectID, patternExists bool) (*models.Pattern, error) {
	p, err := s.GetByWebsiteAndID(ctx, websiteID, patternID)
	if err != nil {
		return nil, err
	}
	if p.PatternPhase == models.PatternPhaseVerified {
		return nil, ErrAlreadyVerified
	}

	slot := -1
	for i, v := range p.Verifications {
		if v.ExpertID == expertID {
			slot = i
			break
		}
	}
	if slot == -1 {
		return nil, ErrNoVerificationSlot
	}

	if patternExists {
		p.Verifications[slot].Phase = models.VerificationVerifiedWithPattern
	} else {
		p.Verifications[slot].Phase = models.VerificationVerifiedWithoutPattern
	}

	done := true
	exists := false
	for _, v := range p.Verifications {
		switch v.Phase {
		case models.VerificationNotVerified:
			done = false
		case models.VerificationVerifiedWithPattern:
			exists = true
		}
	}
	if done {
		p.PatternPhase = models.PatternPhaseVerified
		p.IsPatternExists = exists
	}
	p.UpdatedAt = time.Now()

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"verifications":     p.Verifications,
		"pattern_phase":     p.PatternPhase,
		"is_pattern_exists": p.IsPatternExists,
		"updated_at":        p.UpdatedAt,
	}})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AppendImageKeys adds stored screenshot keys to a pattern.
func (s *Store) AppendImageKeys(ctx context.Context, id primitive.ObjectID, keys []string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"pattern_image_keys": bson.M{"$each": keys}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CountByCreator returns how many findings an expert has contributed.
func (s *Store) CountByCreator(ctx context.Context, expertID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"created_by_expert_id": expertID})
}

// internal/domain/models/pattern.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExpertVerification is one assigned expert's verdict slot on a pattern.
// The slots are snapshotted from the website's expert roster at pattern
// creation time; later roster changes do not alter existing patterns.
type ExpertVerification struct {
	ExpertID primitive.ObjectID `bson:"expert_id" json:"expertId"`
	Phase    string             `bson:"phase" json:"expertVerificationPhase"`
}

// Pattern is a suspected dark-pattern finding on a website.
//
// PatternPhase moves from inProgress to verified exactly once, when every
// verification slot is non-notVerified. IsPatternExists is frozen at that
// moment: true iff any expert reported verifiedWithPattern.
//
// Comments are not embedded; they live in the comments collection keyed
// by pattern_id and are joined in at read time.
type Pattern struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"patternId"`
	WebsiteID         primitive.ObjectID   `bson:"website_id" json:"websiteId"`
	PatternType       string               `bson:"pattern_type" json:"patternType"`
	Description       string               `bson:"description,omitempty" json:"description,omitempty"`
	DetectedURL       string               `bson:"detected_url" json:"detectedUrl"`
	CreatedByExpertID primitive.ObjectID   `bson:"created_by_expert_id" json:"createdByExpertId"`
	IsAutoGenerated   bool                 `bson:"is_auto_generated" json:"isAutoGenerated"`
	PatternImageKeys  []string             `bson:"pattern_image_keys,omitempty" json:"patternImageKeys,omitempty"`
	Verifications     []ExpertVerification `bson:"expert_verifications" json:"expertVerifications"`
	PatternPhase      string               `bson:"pattern_phase" json:"patternPhase"`
	IsPatternExists   bool                 `bson:"is_pattern_exists" json:"isPatternExists"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Pattern phases
const (
	PatternPhaseInProgress = "inProgress"
	PatternPhaseVerified   = "verified"
)

// Expert verification phases
const (
	VerificationNotVerified            = "notVerified"
	VerificationVerifiedWithPattern    = "verifiedWithPattern"
	VerificationVerifiedWithoutPattern = "verifiedWithoutPattern"
)

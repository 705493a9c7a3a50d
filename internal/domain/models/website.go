// internal/domain/models/website.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Website is a site submitted by a client for dark-pattern review.
//
// Vote lists hold the voting user's ObjectID hex, so two users who happen
// to share a display name can never collide. A user id appears in at most
// one of UpVotes/DownVotes at any time.
type Website struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"websiteId"`
	UserID         primitive.ObjectID `bson:"user_id" json:"userId"` // owning client
	BaseURL        string             `bson:"base_url" json:"baseUrl"`
	AdditionalURLs []string           `bson:"additional_urls,omitempty" json:"additionalUrls,omitempty"`
	WebsiteName    string             `bson:"website_name" json:"websiteName"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`

	// Review roster. PrimaryExpertID is the single expert allowed to
	// publish the final certification decision.
	ExpertIDs       []primitive.ObjectID `bson:"expert_ids,omitempty" json:"expertIds,omitempty"`
	PrimaryExpertID primitive.ObjectID   `bson:"primary_expert_id,omitempty" json:"primaryExpertId,omitempty"`

	Phase             string `bson:"phase" json:"phase"`
	IsCompleted       bool   `bson:"is_completed" json:"isCompleted"`
	IsDarkPatternFree bool   `bson:"is_dark_pattern_free" json:"isDarkPatternFree"`
	ExpertFeedback    string `bson:"expert_feedback,omitempty" json:"expertFeedback,omitempty"`

	// CertificationID is assigned at most once, only after the website is
	// completed and dark-pattern free. Guarded by a unique sparse index.
	CertificationID string `bson:"certification_id,omitempty" json:"certificationId,omitempty"`

	UpVotes   []string `bson:"up_votes,omitempty" json:"upVotes,omitempty"`
	DownVotes []string `bson:"down_votes,omitempty" json:"downVotes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Website phases
const (
	WebsitePhaseInProgress = "inProgress"
	WebsitePhasePublished  = "published"
)

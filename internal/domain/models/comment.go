// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reply is a nested response on a comment. Timestamps are always
// server-assigned.
type Reply struct {
	ExpertID  primitive.ObjectID `bson:"expert_id" json:"expertId"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Comment is expert discussion attached to a pattern. The comments
// collection is the single owning store; patterns never embed copies.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"commentId"`
	WebsiteID primitive.ObjectID `bson:"website_id" json:"websiteId"`
	PatternID primitive.ObjectID `bson:"pattern_id" json:"patternId"`
	ExpertID  primitive.ObjectID `bson:"expert_id" json:"expertId"`
	Content   string             `bson:"content" json:"content"`
	Replies   []Reply            `bson:"replies,omitempty" json:"replies,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

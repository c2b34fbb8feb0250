package models

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// ErrNestedReply is returned when a reply would be attached to another reply.
var ErrNestedReply = errors.New("replies can only be attached to root comments")

type Comment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	RecipeID  uint          `gorm:"not null;index" json:"recipe_id"`
	AuthorID  uint          `gorm:"not null;index" json:"author_id"`
	ParentID  *uint         `gorm:"index" json:"parent_id"` // nil for root comments
	Content   string        `gorm:"type:text;not null" json:"content"`
	Likes     pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'" json:"-"`
	IsEdited  bool          `gorm:"default:false" json:"is_edited"`
	EditedAt  *time.Time    `json:"edited_at,omitempty"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	Replies []Comment `gorm:"-" json:"replies,omitempty"`
}

func (c *Comment) IsRoot() bool { return c.ParentID == nil }

func (c *Comment) LikesCount() int { return len(c.Likes) }

func (c *Comment) IsLikedBy(userID uint) bool { return Contains(c.Likes, userID) }

// Edit replaces the content of a persisted comment. It marks the comment
// edited only when the content actually changes and reports whether it did.
func (c *Comment) Edit(content string, now time.Time) bool {
	if c.Content == content {
		return false
	}
	c.Content = content
	if c.ID != 0 {
		c.IsEdited = true
		c.EditedAt = &now
	}
	return true
}

// Placement is where a new comment goes in a recipe thread: either the root
// level or directly under a root comment. The zero value is Root.
type Placement struct {
	parent *Comment
}

// Root places a comment at the top level of a recipe thread.
func Root() Placement { return Placement{} }

// ReplyTo places a comment under parent. parent must itself be a root comment.
func ReplyTo(parent *Comment) (Placement, error) {
	if parent == nil || !parent.IsRoot() {
		return Placement{}, ErrNestedReply
	}
	return Placement{parent: parent}, nil
}

func (p Placement) IsReply() bool { return p.parent != nil }

// Parent returns the root comment being replied to, or nil.
func (p Placement) Parent() *Comment { return p.parent }

// Apply sets the parent reference on c according to p.
func (p Placement) Apply(c *Comment) {
	if p.parent == nil {
		c.ParentID = nil
		return
	}
	id := p.parent.ID
	c.ParentID = &id
}

// File: internal/comment/model.go
package comment

import (
	"time"
)

// Comment is one entry of a product discussion. The thread is exactly two
// levels deep: a top-level comment plus a flat list of replies. Elements of
// Replies never carry replies of their own; the boundary mapping enforces
// this, flattening anything deeper the backend might send.
type Comment struct {
	ID              int
	ProductID       int
	UserID          int
	UserName        string
	Text            string
	ParentCommentID *int
	Replies         []Comment
	CreatedAt       time.Time
}

// CommentDTO is the wire shape of a comment with nested replies.
type CommentDTO struct {
	ID              int          `json:"id"`
	ProductID       int          `json:"product_id"`
	UserID          int          `json:"user_id"`
	UserName        string       `json:"user_name"`
	Comment         string       `json:"comment"`
	ParentCommentID *int         `json:"parent_comment_id,omitempty"`
	Replies         []CommentDTO `json:"replies,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// ToDomain maps a top-level wire comment to the domain model, enforcing the
// two-level invariant: every descendant, at whatever depth the backend sent
// it, becomes a direct reply of this comment with its own replies cleared.
func (d CommentDTO) ToDomain() Comment {
	c := d.toFlat()
	c.Replies = flattenReplies(d.ID, d.Replies)
	return c
}

// toFlat maps the scalar fields only.
func (d CommentDTO) toFlat() Comment {
	return Comment{
		ID:              d.ID,
		ProductID:       d.ProductID,
		UserID:          d.UserID,
		UserName:        d.UserName,
		Text:            d.Comment,
		ParentCommentID: d.ParentCommentID,
		CreatedAt:       d.CreatedAt,
		Replies:         []Comment{},
	}
}

func flattenReplies(parentID int, dtos []CommentDTO) []Comment {
	flat := make([]Comment, 0, len(dtos))
	for _, dto := range dtos {
		reply := dto.toFlat()
		pid := parentID
		reply.ParentCommentID = &pid
		flat = append(flat, reply)
		// Deeper nesting is flattened into the same top-level comment.
		flat = append(flat, flattenReplies(parentID, dto.Replies)...)
	}
	return flat
}

// CreateCommentRequest defines a new comment or reply. A nil ParentCommentID
// makes it top-level.
type CreateCommentRequest struct {
	ProductID       int    `json:"product_id" validate:"required,gt=0"`
	Comment         string `json:"comment" validate:"required,max=1000"`
	ParentCommentID *int   `json:"parent_comment_id,omitempty" validate:"omitempty,gt=0"`
}

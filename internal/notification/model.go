// File: internal/notification/model.go
package notification

import (
	"time"
)

// NotificationType defines the type of notification.
type NotificationType string

const (
	TypeWishlist NotificationType = "wishlist"
	TypeComment  NotificationType = "comment"
	TypeReply    NotificationType = "reply"
	TypeOther    NotificationType = "other"
)

// Notification is an inbox entry. Read state moves one way only:
// unread to read, never back.
type Notification struct {
	ID           int
	Type         NotificationType
	Message      string
	ProductID    int
	ProductName  *string
	ProductImage *string
	IsRead       bool
	CreatedAt    time.Time
}

// NotificationDTO is the wire shape of a notification.
type NotificationDTO struct {
	ID           int       `json:"id"`
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	ProductID    int       `json:"product_id"`
	ProductName  *string   `json:"product_name,omitempty"`
	ProductImage *string   `json:"product_image,omitempty"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToDomain maps the wire notification to the domain model. Unknown types
// collapse to TypeOther so a new backend type cannot break rendering.
func (d NotificationDTO) ToDomain() Notification {
	notifType := NotificationType(d.Type)
	switch notifType {
	case TypeWishlist, TypeComment, TypeReply:
	default:
		notifType = TypeOther
	}
	return Notification{
		ID:           d.ID,
		Type:         notifType,
		Message:      d.Message,
		ProductID:    d.ProductID,
		ProductName:  d.ProductName,
		ProductImage: d.ProductImage,
		IsRead:       d.IsRead,
		CreatedAt:    d.CreatedAt,
	}
}

package ports

import (
	"context"
	"time"

	"prodflow/domain/core"
)

// Announcement is the calendar/announcement record requested on finalize
type Announcement struct {
	InitiativeID core.InitiativeID `json:"initiative_id"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	BodyHTML     string            `json:"body_html,omitempty"`
	Date         time.Time         `json:"date"`
	Category     string            `json:"category"`
}

// AnnouncementPublisher is the outbound collaborator that records announcements
type AnnouncementPublisher interface {
	Publish(ctx context.Context, a Announcement) error
}

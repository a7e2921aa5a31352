package postgres

import (
	"context"
	"fmt"
	"time"

	"prodflow/domain/core"
	"prodflow/ports"

	"github.com/jmoiron/sqlx"
)

// AnnouncementRepositoryImpl stores finalize announcements in the announcements table
type AnnouncementRepositoryImpl struct {
	db *sqlx.DB
}

var _ ports.AnnouncementPublisher = (*AnnouncementRepositoryImpl)(nil)

// NewAnnouncementRepository creates a new PostgreSQL announcement publisher
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepositoryImpl {
	return &AnnouncementRepositoryImpl{db: db}
}

// Publish records the announcement
func (r *AnnouncementRepositoryImpl) Publish(ctx context.Context, a ports.Announcement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO announcements (initiative_id, title, body, body_html, announced_on, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, string(a.InitiativeID), a.Title, a.Body, a.BodyHTML, a.Date.Format(core.DateLayout), a.Category)
	if err != nil {
		return fmt.Errorf("failed to record announcement for %s: %w", a.InitiativeID, err)
	}
	return nil
}

// ListFor returns the announcements recorded for an initiative, newest first
func (r *AnnouncementRepositoryImpl) ListFor(ctx context.Context, id core.InitiativeID) ([]ports.Announcement, error) {
	var rows []struct {
		InitiativeID string `db:"initiative_id"`
		Title        string `db:"title"`
		Body         string `db:"body"`
		BodyHTML     string `db:"body_html"`
		AnnouncedOn  string `db:"announced_on"`
		Category     string `db:"category"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT initiative_id, title, body, body_html, to_char(announced_on, 'YYYY-MM-DD') AS announced_on, category
		FROM announcements
		WHERE initiative_id = $1
		ORDER BY created_at DESC, id DESC
	`, string(id))
	if err != nil {
		return nil, err
	}

	out := make([]ports.Announcement, 0, len(rows))
	for _, row := range rows {
		a := ports.Announcement{
			InitiativeID: core.InitiativeID(row.InitiativeID),
			Title:        row.Title,
			Body:         row.Body,
			BodyHTML:     row.BodyHTML,
			Category:     row.Category,
		}
		if d, err := time.Parse(core.DateLayout, row.AnnouncedOn); err == nil {
			a.Date = d
		}
		out = append(out, a)
	}
	return out, nil
}

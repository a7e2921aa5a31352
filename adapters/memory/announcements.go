package memory

import (
	"context"
	"sync"

	"prodflow/ports"
)

// AnnouncementLog records published announcements in memory
type AnnouncementLog struct {
	entries []ports.Announcement
	mu      sync.Mutex
}

var _ ports.AnnouncementPublisher = (*AnnouncementLog)(nil)

// NewAnnouncementLog creates an empty log
func NewAnnouncementLog() *AnnouncementLog {
	return &AnnouncementLog{}
}

// Publish appends the announcement
func (l *AnnouncementLog) Publish(ctx context.Context, a ports.Announcement) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, a)
	return nil
}

// Entries returns a copy of everything published so far
func (l *AnnouncementLog) Entries() []ports.Announcement {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.Announcement(nil), l.entries...)
}

package chat

import (
	"fmt"
	"sync"
	"time"

	"ragchat/internal/models"
)

// SummaryUpdate is what a settled submission writes back to the sidebar.
type SummaryUpdate struct {
	Title       string
	LastMessage string
	Timestamp   time.Time
}

type entry struct {
	id          string
	title       string
	lastMessage string
	timestamp   time.Time
}

// Registry keeps conversation summaries most-recent-first and the id of the
// selected one. Selection lives only in selectedID.
type Registry struct {
	mu         sync.Mutex
	entries    []entry
	selectedID string
	now        func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// Create prepends a new, empty conversation, selects it and returns its id.
func (r *Registry) Create() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	id := r.uniqueID(fmt.Sprintf("conv_%d", now.UnixMilli()))
	r.entries = append([]entry{{id: id, title: models.DefaultTitle, timestamp: now}}, r.entries...)
	r.selectedID = id
	return id
}

func (r *Registry) uniqueID(base string) string {
	id := base
	for n := 1; r.indexOf(id) >= 0; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	return id
}

// add appends an existing conversation at the end, keeping the caller's
// ordering. Used when restoring from the archive.
func (r *Registry) add(s models.Summary) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" || r.indexOf(s.ID) >= 0 {
		return false
	}
	r.entries = append(r.entries, entry{id: s.ID, title: s.Name, lastMessage: s.LastMessage, timestamp: s.Timestamp})
	return true
}

// Select marks id as the selected conversation. Unknown ids are ignored.
func (r *Registry) Select(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(id) < 0 {
		return false
	}
	r.selectedID = id
	return true
}

// UpdateSummary rewrites the sidebar preview of id only.
func (r *Registry) UpdateSummary(id string, u SummaryUpdate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.entries[i].title = u.Title
	r.entries[i].lastMessage = u.LastMessage
	r.entries[i].timestamp = u.Timestamp
	return true
}

func (r *Registry) Selected() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectedID
}

func (r *Registry) Summary(id string) (models.Summary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.Summary{}, false
	}
	return r.summary(i), true
}

// Summaries returns the sidebar snapshot in display order.
func (r *Registry) Summaries() []models.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Summary, len(r.entries))
	for i := range r.entries {
		out[i] = r.summary(i)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) summary(i int) models.Summary {
	e := r.entries[i]
	return models.Summary{
		ID:          e.id,
		Name:        e.title,
		LastMessage: e.lastMessage,
		Timestamp:   e.timestamp,
		Selected:    e.id == r.selectedID,
	}
}

func (r *Registry) indexOf(id string) int {
	for i := range r.entries {
		if r.entries[i].id == id {
			return i
		}
	}
	return -1
}

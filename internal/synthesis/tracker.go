package synthesis

import (
	"sort"
	"sync"

	"github.com/aura-webinar/qna/internal/models"
)

type trackedQuestion struct {
	index     int
	text      string
	generated string
	anchor    string
	approved  bool
	edited    bool
}

// Tracker records moderator decisions on synthesized questions, per session.
// Entries outlive regeneration and are never deleted.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*trackedQuestion
}

// NewTracker creates an empty approval tracker.
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]map[string]*trackedQuestion)}
}

// Seed records a fresh synthesis. anchors[i] identifies the cluster behind
// items[i] (its first question id, or "" for padding). An entry keeps its
// approval and edits when its anchor or generated text is unchanged; a new
// cluster taking over the index starts unapproved.
func (t *Tracker) Seed(sessionID string, items []models.SynthesizedQuestion, anchors []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries, ok := t.sessions[sessionID]
	if !ok {
		entries = make(map[string]*trackedQuestion)
		t.sessions[sessionID] = entries
	}
	for i, item := range items {
		anchor := ""
		if i < len(anchors) {
			anchor = anchors[i]
		}
		e, ok := entries[item.ID]
		if !ok {
			entries[item.ID] = &trackedQuestion{index: i, text: item.Text, generated: item.Text, anchor: anchor}
			continue
		}
		sameCluster := anchor != "" && e.anchor == anchor
		if sameCluster || e.generated == item.Text {
			if !e.edited {
				e.text = item.Text
			}
		} else {
			e.text = item.Text
			e.approved = false
			e.edited = false
		}
		e.index = i
		e.generated = item.Text
		e.anchor = anchor
	}
}

// Approve marks a synthesized question visible to the audience.
func (t *Tracker) Approve(sessionID, id string) bool {
	return t.update(sessionID, id, func(e *trackedQuestion) { e.approved = true })
}

// Reject hides a synthesized question from the audience.
func (t *Tracker) Reject(sessionID, id string) bool {
	return t.update(sessionID, id, func(e *trackedQuestion) { e.approved = false })
}

// Edit overwrites the text of a synthesized question.
func (t *Tracker) Edit(sessionID, id, text string) bool {
	return t.update(sessionID, id, func(e *trackedQuestion) {
		e.text = text
		e.edited = true
	})
}

func (t *Tracker) update(sessionID, id string, fn func(*trackedQuestion)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[sessionID][id]
	if !ok {
		return false
	}
	fn(e)
	return true
}

// ListApproved returns approved entries ordered by index. Unknown sessions yield an empty list.
// Entries from an older, longer synthesis are included; see ApprovedIn.
func (t *Tracker) ListApproved(sessionID string) []models.SynthesizedQuestion {
	t.mu.RLock()
	defer t.mu.RUnlock()
	type indexed struct {
		index int
		q     models.SynthesizedQuestion
	}
	var found []indexed
	for id, e := range t.sessions[sessionID] {
		if e.approved {
			found = append(found, indexed{e.index, models.SynthesizedQuestion{ID: id, SessionID: sessionID, Text: e.text, Approved: true}})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].index != found[j].index {
			return found[i].index < found[j].index
		}
		return found[i].q.ID < found[j].q.ID
	})
	out := make([]models.SynthesizedQuestion, 0, len(found))
	for _, f := range found {
		out = append(out, f.q)
	}
	return out
}

// ApprovedIn returns the approved entries that are part of items, ordered by index.
func (t *Tracker) ApprovedIn(sessionID string, items []models.SynthesizedQuestion) []models.SynthesizedQuestion {
	current := make(map[string]models.SynthesizedQuestion, len(items))
	for _, q := range items {
		current[q.ID] = q
	}
	out := make([]models.SynthesizedQuestion, 0, len(items))
	for _, q := range t.ListApproved(sessionID) {
		if base, ok := current[q.ID]; ok {
			base.Text = q.Text
			base.Approved = true
			out = append(out, base)
		}
	}
	return out
}

// Overlay returns a copy of items carrying the tracker's current text and approval.
func (t *Tracker) Overlay(sessionID string, items []models.SynthesizedQuestion) []models.SynthesizedQuestion {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.SynthesizedQuestion, len(items))
	for i, item := range items {
		if e, ok := t.sessions[sessionID][item.ID]; ok {
			item.Text = e.text
			item.Approved = e.approved
		}
		out[i] = item
	}
	return out
}

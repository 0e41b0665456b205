package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aura-webinar/qna/internal/models"
)

func items(session string, texts ...string) []models.SynthesizedQuestion {
	out := make([]models.SynthesizedQuestion, len(texts))
	for i, text := range texts {
		out[i] = models.SynthesizedQuestion{ID: models.SynthesizedID(session, i), SessionID: session, Text: text}
	}
	return out
}

func TestTrackerUnknownIDsFailWithoutMutation(t *testing.T) {
	tr := NewTracker()
	tr.Seed("s1", items("s1", "a", "b", "c"), nil)

	assert.False(t, tr.Approve("s1", "s1-synth-9"))
	assert.False(t, tr.Reject("s2", "s1-synth-0"))
	assert.False(t, tr.Edit("s1", "nope", "text"))
	assert.Empty(t, tr.ApprovedIn("s1", items("s1", "a", "b", "c")))
	assert.Equal(t, items("s1", "a", "b", "c"), tr.Overlay("s1", items("s1", "a", "b", "c")))
}

func TestTrackerApproveEditReject(t *testing.T) {
	tr := NewTracker()
	tr.Seed("s1", items("s1", "a", "b", "c"), nil)

	assert.True(t, tr.Approve("s1", "s1-synth-2"))
	assert.True(t, tr.Approve("s1", "s1-synth-0"))
	assert.True(t, tr.Edit("s1", "s1-synth-0", "A!"))

	want := []models.SynthesizedQuestion{
		{ID: "s1-synth-0", SessionID: "s1", Text: "A!", Approved: true},
		{ID: "s1-synth-2", SessionID: "s1", Text: "c", Approved: true},
	}
	current := items("s1", "a", "b", "c")
	assert.Equal(t, want, tr.ListApproved("s1"))
	assert.Equal(t, want, tr.ApprovedIn("s1", current))

	assert.True(t, tr.Reject("s1", "s1-synth-0"))
	assert.Len(t, tr.ListApproved("s1"), 1)
	assert.Len(t, tr.ApprovedIn("s1", current), 1)

	// s1-synth-2 stays approved in the tracker but is not part of a shorter result.
	assert.Len(t, tr.ListApproved("s1"), 1)
	assert.Empty(t, tr.ApprovedIn("s1", items("s1", "a", "b")))
}

func TestTrackerListApprovedUnknownSession(t *testing.T) {
	got := NewTracker().ListApproved("never-seeded")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	got = NewTracker().ApprovedIn("never-seeded", nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTrackerSeedCarriesForward(t *testing.T) {
	tr := NewTracker()
	tr.Seed("s1", items("s1", "a", "b", "c"), []string{"q1", "q2", ""})
	tr.Approve("s1", "s1-synth-0")
	tr.Edit("s1", "s1-synth-0", "edited")
	tr.Approve("s1", "s1-synth-1")
	tr.Approve("s1", "s1-synth-2")

	// Index 0 keeps its cluster, index 1 is taken by a new cluster,
	// index 2 is padding with unchanged text.
	tr.Seed("s1", items("s1", "a2", "new", "c", "d"), []string{"q1", "q9", "", ""})

	got := tr.Overlay("s1", items("s1", "a2", "new", "c", "d"))
	assert.Equal(t, "edited", got[0].Text)
	assert.True(t, got[0].Approved)
	assert.Equal(t, "new", got[1].Text)
	assert.False(t, got[1].Approved)
	assert.True(t, got[2].Approved)
	assert.False(t, got[3].Approved)
}

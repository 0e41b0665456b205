package synthesis

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/qna/internal/models"
)

func question(text string) models.Question {
	return models.Question{ID: uuid.New(), SessionID: "s1", Text: text, Status: models.StatusApproved}
}

func TestTextSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, TextSimilarity("What is the agenda?", "What is the agenda?"))
	assert.Equal(t, 1.0, TextSimilarity("", ""))
	assert.Equal(t, 1.0, TextSimilarity("Agenda?", "what will the AGENDA be"))
	assert.Less(t, TextSimilarity("What is the agenda?", "Is lunch provided?"), LooseThreshold)

	a, b := "How do I join the breakout rooms?", "Where are breakout rooms listed?"
	assert.Equal(t, TextSimilarity(a, b), TextSimilarity(b, a))
}

func TestClusterDuplicates(t *testing.T) {
	a1, a2, b := question("What is the agenda?"), question("What is the agenda?"), question("Is lunch provided?")
	clusters := NewClusterer(nil, DefaultClusterThreshold).Cluster([]models.Question{a1, a2, b})

	require.Len(t, clusters, 2)
	assert.Equal(t, []models.Question{a1, a2}, clusters[0])
	assert.Equal(t, []models.Question{b}, clusters[1])
}

func TestClusterAgendaScenario(t *testing.T) {
	qs := []models.Question{
		question("What is the agenda?"),
		question("What will the agenda be?"),
		question("Agenda?"),
		question("Is lunch provided?"),
	}
	clusters := NewClusterer(nil, LooseThreshold).Cluster(qs)

	require.Len(t, clusters, 2)
	assert.Len(t, clusters[0], 3)
	assert.Len(t, clusters[1], 1)
	assert.Equal(t, "Is lunch provided?", clusters[1][0].Text)
}

func TestClusterEmpty(t *testing.T) {
	clusters := NewClusterer(nil, DefaultClusterThreshold).Cluster(nil)
	assert.NotNil(t, clusters)
	assert.Empty(t, clusters)
}

func TestClusterThresholdIsStrict(t *testing.T) {
	half := func(a, b string) float64 {
		if a == b {
			return 1
		}
		return 0.5
	}
	clusters := NewClusterer(half, 0.5).Cluster([]models.Question{question("x"), question("y")})
	assert.Len(t, clusters, 2)
}

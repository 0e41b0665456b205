package synthesis

import "github.com/aura-webinar/qna/internal/models"

const (
	// DefaultClusterThreshold groups questions for synthesis.
	DefaultClusterThreshold = 0.7
	// LooseThreshold is the looser bound accepted as "similar enough".
	LooseThreshold = 0.6
)

// Clusterer groups similar questions with a single greedy pass.
type Clusterer struct {
	Similarity Similarity
	Threshold  float64
}

// NewClusterer creates a clusterer. A nil similarity uses TextSimilarity.
func NewClusterer(sim Similarity, threshold float64) *Clusterer {
	if sim == nil {
		sim = TextSimilarity
	}
	return &Clusterer{Similarity: sim, Threshold: threshold}
}

// Cluster partitions questions in input order. Each question joins the first
// cluster whose first member scores strictly above the threshold, otherwise
// it starts a new cluster. Clusters are ordered by first-seen member.
func (c *Clusterer) Cluster(questions []models.Question) [][]models.Question {
	clusters := make([][]models.Question, 0)
	for _, q := range questions {
		placed := false
		for i := range clusters {
			if c.Similarity(q.Text, clusters[i][0].Text) > c.Threshold {
				clusters[i] = append(clusters[i], q)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []models.Question{q})
		}
	}
	return clusters
}

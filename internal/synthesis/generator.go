package synthesis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/apperr"
	"github.com/aura-webinar/qna/internal/models"
)

// TextGenerator is an external text-generation backend.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const promptInstruction = "Given these clusters of similar audience questions, write 3 to 5 clean, concise, " +
	"non-redundant questions that best represent the main topics. Only output the questions as a numbered list."

const representativeLen = 80

var listPrefix = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

// GeneratorOptions bounds the generator output and backend call.
type GeneratorOptions struct {
	MinQuestions int
	MaxQuestions int
	Timeout      time.Duration
}

// Generator turns clusters into 3–5 representative question strings.
type Generator struct {
	backend TextGenerator
	opts    GeneratorOptions
	logger  *zap.Logger
}

// NewGenerator creates a generator. A nil backend always uses the fallback.
func NewGenerator(backend TextGenerator, opts GeneratorOptions, logger *zap.Logger) *Generator {
	if opts.MinQuestions <= 0 {
		opts.MinQuestions = 3
	}
	if opts.MaxQuestions < opts.MinQuestions {
		opts.MaxQuestions = opts.MinQuestions + 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{backend: backend, opts: opts, logger: logger}
}

// BuildPrompt renders one block per cluster plus the instruction.
func BuildPrompt(clusters [][]models.Question) string {
	var b strings.Builder
	b.WriteString(promptInstruction)
	for i, cluster := range clusters {
		texts := make([]string, 0, len(cluster))
		for _, q := range cluster {
			texts = append(texts, q.Text)
		}
		fmt.Fprintf(&b, "\nCluster %d: %s", i+1, strings.Join(texts, "; "))
	}
	return b.String()
}

// ParseNumberedList splits a numbered or bulleted response into question strings.
func ParseNumberedList(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(listPrefix.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Generate returns between MinQuestions and MaxQuestions non-empty strings.
// Backend failures are absorbed and answered with the deterministic fallback.
func (g *Generator) Generate(ctx context.Context, clusters [][]models.Question) []string {
	if g.backend == nil || len(clusters) == 0 {
		return g.Fallback(clusters)
	}
	out, err := g.generate(ctx, clusters)
	if err != nil {
		g.logger.Warn("synthesis generation fell back", zap.Error(err), zap.Int("clusters", len(clusters)))
		return g.Fallback(clusters)
	}
	return out
}

func (g *Generator) generate(ctx context.Context, clusters [][]models.Question) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	text, err := g.backend.Generate(ctx, BuildPrompt(clusters))
	if err != nil {
		return nil, apperr.Upstream("text generation failed", err)
	}
	lines := ParseNumberedList(text)
	if len(lines) < g.opts.MinQuestions {
		return nil, apperr.Upstream(fmt.Sprintf("text generation returned %d questions", len(lines)), nil)
	}
	if len(lines) > g.opts.MaxQuestions {
		lines = lines[:g.opts.MaxQuestions]
	}
	return lines, nil
}

// Fallback produces one placeholder per cluster, padded to the minimum and
// capped at the maximum. The marker changes whenever the clustered set does.
func (g *Generator) Fallback(clusters [][]models.Question) []string {
	n := len(clusters)
	if n < g.opts.MinQuestions {
		n = g.opts.MinQuestions
	}
	if n > g.opts.MaxQuestions {
		n = g.opts.MaxQuestions
	}
	marker := clusterMarker(clusters)
	out := make([]string, n)
	for i := range out {
		if i < len(clusters) {
			out[i] = fmt.Sprintf("Synthesized Q%d: %s (%s)", i+1, truncate(clusters[i][0].Text, representativeLen), marker)
			continue
		}
		out[i] = fmt.Sprintf("Synthesized Q%d (%s)", i+1, marker)
	}
	return out
}

func clusterMarker(clusters [][]models.Question) string {
	h := sha256.New()
	for _, cluster := range clusters {
		for _, q := range cluster {
			h.Write([]byte(q.ID.String()))
			h.Write([]byte{','})
		}
		h.Write([]byte{';'})
	}
	return hex.EncodeToString(h.Sum(nil))[:8]
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

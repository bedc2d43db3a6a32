package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abel-yelin/AI-blog-for-gitbase/pkg/types"
)

// ErrEmptyGeneration indicates the model response contained no usable
// lines, so neither a title nor a body could be extracted.
var ErrEmptyGeneration = errors.New("model output contains no usable lines")

// Generator is the content generation capability the composer delegates to.
type Generator interface {
	SendRequest(ctx context.Context, prompt string) (string, error)
}

// Composer builds the generation prompt from existing post titles and
// parses the raw model response into a structured post.
type Composer struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a new composer.
func New(gen Generator, logger *zap.Logger) *Composer {
	return &Composer{
		gen:    gen,
		logger: logger,
	}
}

// Compose generates a new post distinct from the given existing titles.
// The title/body split trusts the model: the first non-empty line is the
// title, everything after it is the body, and no structural validation
// is applied beyond that.
func (c *Composer) Compose(ctx context.Context, existingTitles []string) (types.GeneratedPost, error) {
	prompt := c.buildPrompt(existingTitles)

	raw, err := c.gen.SendRequest(ctx, prompt)
	if err != nil {
		return types.GeneratedPost{}, fmt.Errorf("failed to generate post: %w", err)
	}

	post, err := parsePost(raw)
	if err != nil {
		return types.GeneratedPost{}, err
	}

	c.logger.Info("composed post",
		zap.String("title", post.Title),
		zap.Int("existing_titles", len(existingTitles)),
	)

	return post, nil
}

func (c *Composer) buildPrompt(existingTitles []string) string {
	var sb strings.Builder

	sb.WriteString("Write a new blog post about software engineering practice.\n\n")
	sb.WriteString("The blog already contains the following posts; pick a topic that is not covered by any of them:\n")
	sb.WriteString(strings.Join(existingTitles, "\n"))
	sb.WriteString("\n\n")
	sb.WriteString("Constraints:\n")
	sb.WriteString("- The body must be between 400 and 800 words.\n")
	sb.WriteString("- Use markdown with ## section headings.\n")
	sb.WriteString("- Respond with the post title on the first line, then a blank line, then the body.\n")
	sb.WriteString("- Do not wrap the response in code fences.\n")

	return sb.String()
}

// parsePost splits the raw model output into title and body. The empty
// check must come before any index access.
func parsePost(raw string) (types.GeneratedPost, error) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return types.GeneratedPost{}, ErrEmptyGeneration
	}

	return types.GeneratedPost{
		Title:   strings.TrimSpace(lines[0]),
		Content: strings.TrimSpace(strings.Join(lines[1:], "\n")),
	}, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"TrendPress/internal/content"
	"TrendPress/internal/domain"
	"TrendPress/internal/metrics"
	"TrendPress/internal/ports"
	"TrendPress/internal/validation"
)

const (
	summaryInputRunes = 2000
	maxTitleRunes     = 200
	metaTitleRunes    = 60
	metaDescRunes     = 160
	wordsPerSection   = 500
)

// Generation steps that talk to the backend.
const (
	opTitle      = "title"
	opIntro      = "intro"
	opSection    = "section"
	opConclusion = "conclusion"
	opSummary    = "summary"
)

const (
	introFallback = "As artificial intelligence moves quickly into everyday work, more and more tools " +
		"promise better efficiency and creativity. This article walks through the ideas worth knowing and " +
		"how to put them to use."
	sectionFallback = "This is sample content. Once a generation backend is configured, this section " +
		"is replaced by text written for the topic."
	summaryFallback = "An overview of the topic with practical takeaways."
)

// Completion is the outcome of one backend call.
type Completion struct {
	Text string
	Err  error
}

// OK reports whether the completion carries usable text.
func (c Completion) OK() bool {
	return c.Err == nil && strings.TrimSpace(c.Text) != ""
}

// Or returns the completion text, or fallback when the call failed.
func (c Completion) Or(fallback string) string {
	if c.OK() {
		return c.Text
	}
	return fallback
}

// Fallback returns the deterministic placeholder for a generation step.
// The title step falls back to the topic's own title.
func Fallback(op string, topic domain.Topic) string {
	switch op {
	case opTitle:
		return topic.Title
	case opIntro:
		return introFallback
	case opSummary:
		return summaryFallback
	default:
		return sectionFallback
	}
}

// ArticleGenerator turns one topic into one article.
type ArticleGenerator interface {
	Generate(ctx context.Context, topic domain.Topic) (domain.Article, error)
}

// GeneratorDeps wires the generator's collaborators. Backend may be nil.
type GeneratorDeps struct {
	Backend    ports.Backend
	Limiter    ports.Limiter
	Clock      ports.Clock
	Validator  *validation.Validator
	Suffixer   *content.SlugSuffixer
	Affiliates []content.AffiliateProduct
	MinWords   int
	MaxWords   int
	// WordCount overrides the random target word count draw.
	WordCount func() int
	Logger    *slog.Logger
}

// Generator implements the article generation sequence.
type Generator struct {
	backend    ports.Backend
	limiter    ports.Limiter
	clock      ports.Clock
	validator  *validation.Validator
	suffixer   *content.SlugSuffixer
	affiliates []content.AffiliateProduct
	wordCount  func() int
	logger     *slog.Logger
}

var _ ArticleGenerator = (*Generator)(nil)

// NewGenerator constructs the generator with defaults for missing deps.
func NewGenerator(deps GeneratorDeps) *Generator {
	g := &Generator{
		backend:    deps.Backend,
		limiter:    deps.Limiter,
		clock:      deps.Clock,
		validator:  deps.Validator,
		suffixer:   deps.Suffixer,
		affiliates: deps.Affiliates,
		wordCount:  deps.WordCount,
		logger:     deps.Logger,
	}
	if g.clock == nil {
		g.clock = SystemClock{}
	}
	if g.validator == nil {
		g.validator = validation.New()
	}
	if g.suffixer == nil {
		g.suffixer = &content.SlugSuffixer{}
	}
	if g.affiliates == nil {
		g.affiliates = content.DefaultAffiliates
	}
	if g.wordCount == nil {
		g.wordCount = uniformWordCount(deps.MinWords, deps.MaxWords)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

func uniformWordCount(lo, hi int) func() int {
	if lo <= 0 {
		lo = 1500
	}
	if hi <= lo {
		hi = lo + 1500
	}
	return func() int { return lo + rand.IntN(hi-lo) }
}

// Generate produces a complete article. Backend failures degrade to placeholder
// text; only cancellation or an invalid record fail the call.
func (g *Generator) Generate(ctx context.Context, topic domain.Topic) (domain.Article, error) {
	now := g.clock.Now()
	target := g.wordCount()
	sections := (target + wordsPerSection - 1) / wordsPerSection

	title := g.title(ctx, topic)

	var raw strings.Builder
	raw.WriteString(g.text(ctx, opIntro, introPrompt(title, topic.Keyword), topic))
	for i := 1; i <= sections; i++ {
		raw.WriteString("\n\n")
		raw.WriteString(g.text(ctx, opSection, sectionPrompt(i, title, topic.Keyword), topic))
	}
	raw.WriteString("\n\n")
	raw.WriteString(g.text(ctx, opConclusion, conclusionPrompt(title), topic))

	body := content.Format(raw.String(), title)

	summary := content.Plain(g.complete(ctx, opSummary, summaryPrompt(content.Prefix(body, summaryInputRunes))).
		Or(Fallback(opSummary, topic)))
	if summary == "" {
		summary = Fallback(opSummary, topic)
	}

	if err := ctx.Err(); err != nil {
		return domain.Article{}, err
	}

	category := content.Categorize(topic.Keyword)
	article := domain.Article{
		Title:           title,
		Slug:            content.Slugify(title, g.suffixer.Next(now)),
		Content:         content.AddAffiliateLinks(body, g.affiliates),
		Summary:         summary,
		Category:        category,
		Tags:            content.Tags(topic.Keyword, category),
		Keywords:        content.ExtractKeywords(body, topic.Keyword),
		MetaTitle:       content.Truncate(title, metaTitleRunes),
		MetaDescription: content.Truncate(summary, metaDescRunes),
		SourceURL:       topic.URL,
		SourceType:      topic.Source,
		WordCount:       content.CountWords(body),
	}

	if err := g.validator.Article(article); err != nil {
		return domain.Article{}, fmt.Errorf("generate topic %d: %w", topic.ID, err)
	}
	return article, nil
}

func (g *Generator) title(ctx context.Context, topic domain.Topic) string {
	text := g.complete(ctx, opTitle, titlePrompt(topic.Title)).Or(Fallback(opTitle, topic))
	title := strings.Trim(content.Plain(text), "\"'“”‘’ \n")
	if title == "" {
		title = topic.Title
	}
	return content.Truncate(title, maxTitleRunes)
}

func (g *Generator) text(ctx context.Context, op, prompt string, topic domain.Topic) string {
	c := g.complete(ctx, op, prompt)
	if c.OK() {
		if text := content.Sanitize(c.Text); text != "" {
			return text
		}
	}
	return Fallback(op, topic)
}

// complete performs one rate-limited backend call.
func (g *Generator) complete(ctx context.Context, op, prompt string) Completion {
	if g.backend == nil {
		metrics.RecordBackendCall("unavailable")
		return Completion{Err: domain.ErrBackendUnavailable}
	}

	if err := wait(ctx, g.limiter); err != nil {
		return Completion{Err: &domain.BackendError{Op: op, Err: err}}
	}

	text, err := g.backend.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrBackendUnavailable) {
			outcome = "unavailable"
		}
		metrics.RecordBackendCall(outcome)
		g.logger.Warn("backend call failed, using fallback", "op", op, "backend", g.backend.Name(), "error", err)
		return Completion{Err: &domain.BackendError{Op: op, Err: err}}
	}

	metrics.RecordBackendCall("ok")
	return Completion{Text: text}
}

func titlePrompt(topic string) string {
	return fmt.Sprintf(`Write one catchy article title (15-25 words or characters) for the topic below.
Topic: %s
Requirements:
- include a number or a concrete benefit
- spark curiosity
- SEO friendly
- reply with the title only, in the language of the topic`, topic)
}

func introPrompt(title, keyword string) string {
	return fmt.Sprintf(`Write an engaging opening (200-300 words) for the article "%s".
Keyword: %s
Requirements:
- raise a pain point or question
- promise a solution
- natural, fluent language`, title, keyword)
}

func sectionPrompt(n int, title, keyword string) string {
	return fmt.Sprintf(`Continue with part %d of the article (400-500 words).
Article title: %s
Keyword: %s
Requirements:
- use subheadings
- give concrete methods or cases
- plain language
- use lists and bold where it helps`, n, title, keyword)
}

func conclusionPrompt(title string) string {
	return fmt.Sprintf(`Write a closing paragraph (150-200 words) for the article "%s".
Requirements:
- recap the key points
- give an actionable suggestion
- invite readers to comment or share`, title)
}

func summaryPrompt(body string) string {
	return fmt.Sprintf(`Summarize the core of the following article in under 100 words:
%s
Keep it concise and cover the main points.`, body)
}

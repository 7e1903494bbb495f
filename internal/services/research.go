package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/gemini"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

// ResearchService fetches caller-supplied source pages and summarizes them
// into a blueprint-style research memo. Failures here never fail the run;
// the pipeline degrades gracefully and continues without a report.
type ResearchService interface {
	FetchSources(ctx context.Context, urls []string) []domain.ResearchSource
	BuildReport(ctx context.Context, courseTitle string, sources []domain.ResearchSource, model string) (*domain.ResearchReport, error)
}

type researchService struct {
	log        *logger.Logger
	ai         gemini.Client
	httpClient *http.Client
}

func NewResearchService(baseLog *logger.Logger, ai gemini.Client) ResearchService {
	return &researchService{
		log:        baseLog.With("service", "ResearchService"),
		ai:         ai,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

var (
	scriptPattern = regexp.MustCompile(`(?is)<script.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	spacePattern  = regexp.MustCompile(`\s+`)
	titlePattern  = regexp.MustCompile(`(?is)<title>(.*?)</title>`)
)

func stripHTML(raw string) string {
	s := scriptPattern.ReplaceAllString(raw, " ")
	s = stylePattern.ReplaceAllString(s, " ")
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

func extractTitle(raw string) string {
	if m := titlePattern.FindStringSubmatch(raw); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title
		}
	}
	return "Source"
}

// FetchSources downloads each URL best-effort; an unreachable source becomes
// a placeholder entry rather than an error.
func (s *researchService) FetchSources(ctx context.Context, urls []string) []domain.ResearchSource {
	sources := make([]domain.ResearchSource, 0, len(urls))
	for _, u := range urls {
		source := domain.ResearchSource{Title: "Source", URL: u, Excerpt: "Unavailable"}
		if body, err := s.fetchPage(ctx, u); err == nil {
			source.Title = extractTitle(body)
			text := stripHTML(body)
			if len(text) > 2000 {
				text = text[:2000]
			}
			source.Excerpt = text
		} else {
			s.log.Debug("Research source fetch failed", "url", u, "error", err)
		}
		sources = append(sources, source)
	}
	return sources
}

func (s *researchService) fetchPage(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *researchService) BuildReport(ctx context.Context, courseTitle string, sources []domain.ResearchSource, model string) (*domain.ResearchReport, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following sources into a blueprint-style research memo for %s.\n", courseTitle)
	b.WriteString("Focus on syllabus themes, exam expectations, and key topics. Cite sources in the summary.\n")
	b.WriteString("Sources:\n")
	for _, source := range sources {
		fmt.Fprintf(&b, "Title: %s\nURL: %s\nExcerpt: %s\n\n", source.Title, source.URL, source.Excerpt)
	}
	b.WriteString("Return JSON matching the schema.")

	var report domain.ResearchReport
	err := s.ai.GenerateJSON(ctx, b.String(), researchReportSchema(), gemini.Options{
		Model:           model,
		Temperature:     0.4,
		MaxOutputTokens: 1200,
	}, &report)
	if err != nil {
		return nil, fmt.Errorf("build research report: %w", err)
	}
	return &report, nil
}

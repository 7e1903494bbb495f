package transcript

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

// ErrTranscriptUnavailable is returned when neither the manual nor the
// auto-generated caption track yields any segments.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// Fetcher retrieves timed transcript segments for a video. Segments are
// ordered by start offset and never empty on success.
type Fetcher interface {
	Fetch(ctx context.Context, videoID, language string) ([]domain.TranscriptSegment, error)
}

type fetcher struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewFetcher(log *logger.Logger) Fetcher {
	baseURL := os.Getenv("TIMEDTEXT_BASE_URL")
	if baseURL == "" {
		baseURL = "https://video.google.com/timedtext"
	}
	return &fetcher{
		log:        log.With("service", "TranscriptFetcher"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type timedText struct {
	XMLName xml.Name    `xml:"transcript"`
	Texts   []timedLine `xml:"text"`
}

type timedLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func parseTimedText(raw []byte) []domain.TranscriptSegment {
	if len(raw) == 0 {
		return nil
	}
	var doc timedText
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	segments := make([]domain.TranscriptSegment, 0, len(doc.Texts))
	for _, line := range doc.Texts {
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		text := html.UnescapeString(strings.ReplaceAll(line.Body, "\n", " "))
		segments = append(segments, domain.TranscriptSegment{
			Start:     start,
			Duration:  dur,
			End:       start + dur,
			Text:      text,
			Timestamp: FormatTimestamp(start),
		})
	}
	return segments
}

func (f *fetcher) fetchXML(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}
	return io.ReadAll(resp.Body)
}

func (f *fetcher) Fetch(ctx context.Context, videoID, language string) ([]domain.TranscriptSegment, error) {
	base := fmt.Sprintf("%s?lang=%s&v=%s", f.baseURL, url.QueryEscape(language), url.QueryEscape(videoID))

	raw, err := f.fetchXML(ctx, base)
	if err != nil {
		return nil, err
	}
	segments := parseTimedText(raw)

	// fall back to the auto-generated track
	if len(segments) == 0 {
		raw, err = f.fetchXML(ctx, base+"&kind=asr")
		if err != nil {
			return nil, err
		}
		segments = parseTimedText(raw)
	}

	if len(segments) == 0 {
		f.log.Debug("No caption tracks found", "video_id", videoID, "language", language)
		return nil, ErrTranscriptUnavailable
	}
	return segments, nil
}

// BuildText renders segments as "[mm:ss] text" lines for prompt context.
func BuildText(segments []domain.TranscriptSegment) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[" + s.Timestamp + "] " + s.Text)
	}
	return b.String()
}

// Chunk splits segments into runs whose rendered text stays under maxChars.
func Chunk(segments []domain.TranscriptSegment, maxChars int) [][]domain.TranscriptSegment {
	if maxChars <= 0 {
		maxChars = 4000
	}
	var chunks [][]domain.TranscriptSegment
	var current []domain.TranscriptSegment
	currentChars := 0
	for _, s := range segments {
		piece := len(s.Timestamp) + len(s.Text) + 3
		if currentChars+piece > maxChars && len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
			currentChars = 0
		}
		current = append(current, s)
		currentChars += piece
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

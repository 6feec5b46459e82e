package sentiment

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"fx-sentiment/internal/domain"
	"fx-sentiment/internal/metrics"
)

// A score needs an explicit separator or the "score" keyword, and must end the token,
// so prices ("bullish 1.0850") and prose ("bull 10-year") are not read as scores.
const scoreTail = `(?:\s*[:=]\s*|\s+score\s*[:=]?\s*)(\d{1,3}(?:\.\d{1,2})?)(?:\s*%|[\s,;)]|\.(?:\s|$)|$)`

var (
	bullishScoreRx = regexp.MustCompile(`(?i)\bbull(?:ish)?` + scoreTail)
	bearishScoreRx = regexp.MustCompile(`(?i)\bbear(?:ish)?` + scoreTail)
)

// Extractor turns a free-text report into one record per tracked instrument.
//
// Commentary is the text following the first mention of the instrument, up to the
// next line break. Scores are read from that same line when the report carries them
// ("bullish=70 bearish=30", "Bullish: 70%"). Unless both sides parse, both scores are
// pseudo-random placeholders in [0,100] and the record is marked ScoresParsed=false. Placeholder
// scores carry no information about the report and must not be treated as such.
type Extractor struct {
	randScore func() float64
}

func NewExtractor() *Extractor {
	return &Extractor{randScore: func() float64 { return rand.Float64() * 100 }}
}

// Extract never fails: a missing instrument degrades to the placeholder commentary.
func (e *Extractor) Extract(report string, instruments []string) []domain.SentimentRecord {
	records := make([]domain.SentimentRecord, 0, len(instruments))
	for _, instrument := range instruments {
		line, found := lineAfter(report, instrument)

		commentary := line
		if !found || commentary == "" {
			commentary = domain.CommentaryPlaceholder
			metrics.PlaceholderCommentaryTotal.WithLabelValues(instrument).Inc()
		}

		bull, bullOK := parseScore(bullishScoreRx, line)
		bear, bearOK := parseScore(bearishScoreRx, line)
		parsed := bullOK && bearOK
		if !parsed {
			bull, bear = e.randScore(), e.randScore()
		}

		records = append(records, domain.SentimentRecord{
			Instrument:   instrument,
			BullishScore: bull,
			BearishScore: bear,
			Commentary:   commentary,
			ScoresParsed: parsed,
		})
	}
	return records
}

// lineAfter returns the text between the first occurrence of token and the next line break.
func lineAfter(text, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	idx := strings.Index(text, token)
	if idx < 0 {
		return "", false
	}
	rest := text[idx+len(token):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSuffix(rest, "\r"), true
}

func parseScore(rx *regexp.Regexp, line string) (float64, bool) {
	m := rx.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}

package sentiment

import (
	"testing"

	"fx-sentiment/internal/domain"
)

var pairs = []string{"EURUSD", "GBPUSD", "USDJPY", "AUDUSD"}

func fixedExtractor(v float64) *Extractor {
	return &Extractor{randScore: func() float64 { return v }}
}

func TestExtractCommentaryUpToLineBreak(t *testing.T) {
	raw := "EURUSD bullish momentum\nGBPUSD ranging near support"
	records := fixedExtractor(50).Extract(raw, pairs)

	if len(records) != len(pairs) {
		t.Fatalf("expected %d records, got %d", len(pairs), len(records))
	}
	for i, r := range records {
		if r.Instrument != pairs[i] {
			t.Fatalf("record %d out of order: %s", i, r.Instrument)
		}
	}
	if records[0].Commentary != " bullish momentum" {
		t.Fatalf("unexpected EURUSD commentary %q", records[0].Commentary)
	}
	if records[1].Commentary != " ranging near support" {
		t.Fatalf("unexpected GBPUSD commentary %q", records[1].Commentary)
	}
	if records[2].Commentary != domain.CommentaryPlaceholder || records[3].Commentary != domain.CommentaryPlaceholder {
		t.Fatalf("missing instruments should get the placeholder: %+v", records[2:])
	}
}

func TestExtractUsesFirstOccurrence(t *testing.T) {
	raw := "Overview: EURUSD leads\nEURUSD bullish=90 bearish=10 second mention"
	records := fixedExtractor(50).Extract(raw, []string{"EURUSD"})
	if records[0].Commentary != " leads" {
		t.Fatalf("expected first occurrence commentary, got %q", records[0].Commentary)
	}
	if records[0].ScoresParsed {
		t.Fatal("scores on a later line must not be used")
	}
}

func TestExtractEmptyTailFallsBackToPlaceholder(t *testing.T) {
	records := fixedExtractor(50).Extract("EURUSD\nnothing else", []string{"EURUSD"})
	if records[0].Commentary != domain.CommentaryPlaceholder {
		t.Fatalf("expected placeholder for empty tail, got %q", records[0].Commentary)
	}
}

func TestExtractStripsCarriageReturn(t *testing.T) {
	records := fixedExtractor(50).Extract("EURUSD firm\r\nGBPUSD", []string{"EURUSD"})
	if records[0].Commentary != " firm" {
		t.Fatalf("unexpected commentary %q", records[0].Commentary)
	}
}

func TestExtractParsesExplicitScores(t *testing.T) {
	raw := "EURUSD bullish=72 bearish=28 ECB hawkish\n" +
		"GBPUSD Bullish: 41% Bearish: 59% soft data\n" +
		"USDJPY bullish score 55.5 only one score"
	records := fixedExtractor(-1).Extract(raw, pairs[:3])

	if r := records[0]; !r.ScoresParsed || r.BullishScore != 72 || r.BearishScore != 28 {
		t.Fatalf("unexpected EURUSD scores: %+v", r)
	}
	if r := records[1]; !r.ScoresParsed || r.BullishScore != 41 || r.BearishScore != 59 {
		t.Fatalf("unexpected GBPUSD scores: %+v", r)
	}
	if r := records[2]; r.ScoresParsed || r.BullishScore != -1 || r.BearishScore != -1 {
		t.Fatalf("a single parsed side should fall back to placeholders for both: %+v", r)
	}
}

func TestExtractIgnoresNumbersInProse(t *testing.T) {
	raw := "EURUSD looks bullish 1.0850 support holds, bearish below 1.0700\n" +
		"GBPUSD bull 10-year gilts pressure, bear case 20\n" +
		"USDJPY bullish: 1.0850 bearish: 10-day low\n" +
		"AUDUSD bullish score 64.5, bearish: 35.5%."
	records := fixedExtractor(-1).Extract(raw, pairs)

	for _, r := range records[:3] {
		if r.ScoresParsed || r.BullishScore != -1 || r.BearishScore != -1 {
			t.Fatalf("prose numbers must not be read as scores: %+v", r)
		}
	}
	if r := records[3]; !r.ScoresParsed || r.BullishScore != 64.5 || r.BearishScore != 35.5 {
		t.Fatalf("unexpected AUDUSD scores: %+v", r)
	}
}

func TestExtractRejectsOutOfRangeScores(t *testing.T) {
	records := fixedExtractor(33).Extract("EURUSD bullish=150 bearish=20", []string{"EURUSD"})
	if r := records[0]; r.ScoresParsed || r.BullishScore != 33 || r.BearishScore != 33 {
		t.Fatalf("unexpected scores: %+v", r)
	}
}

func TestExtractPlaceholderScoresInRange(t *testing.T) {
	e := NewExtractor()
	for i := 0; i < 50; i++ {
		for _, r := range e.Extract("no pairs here", pairs) {
			if r.BullishScore < 0 || r.BullishScore > 100 || r.BearishScore < 0 || r.BearishScore > 100 {
				t.Fatalf("placeholder score out of range: %+v", r)
			}
		}
	}
}

func TestExtractCommentaryIsDeterministic(t *testing.T) {
	e := NewExtractor()
	raw := "EURUSD up\nAUDUSD down"
	a := e.Extract(raw, pairs)
	b := e.Extract(raw, pairs)
	for i := range a {
		if a[i].Commentary != b[i].Commentary {
			t.Fatalf("commentary differs between runs: %q vs %q", a[i].Commentary, b[i].Commentary)
		}
	}
}

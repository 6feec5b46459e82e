package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fx-sentiment/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const ToolName = "market_sentiment"

// SentimentReader is the read side of the sentiment controller.
type SentimentReader interface {
	Current() domain.CacheEntry
	Instruments() []string
}

type SentimentInput struct {
	Instrument string `json:"instrument,omitempty" jsonschema:"currency pair such as EURUSD; omit to get every tracked pair"`
}

type RecordOutput struct {
	Instrument   string  `json:"instrument"`
	BullishScore float64 `json:"bullish_score"`
	BearishScore float64 `json:"bearish_score"`
	Commentary   string  `json:"commentary"`
	ScoresParsed bool    `json:"scores_parsed"`
}

type SentimentOutput struct {
	Status     string         `json:"status"`
	FetchedAt  string         `json:"fetched_at,omitempty"`
	AgeSeconds float64        `json:"age_seconds,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
	Records    []RecordOutput `json:"records"`
}

type Server struct {
	tracer trace.Tracer
	clock  clockwork.Clock
	reader SentimentReader
	mcp    *mcp.Server
}

func New(tracer trace.Tracer, clock clockwork.Clock, reader SentimentReader, version string) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Server{tracer: tracer, clock: clock, reader: reader}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "fx-sentiment", Version: version}, nil)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolName,
		Description: "Current bullish/bearish sentiment and commentary for tracked forex pairs, with cache status.",
	}, s.handleSentiment)
	return s
}

// MCP exposes the underlying server for transports other than HTTP.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// HTTPHandler serves the streamable HTTP transport.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
}

func (s *Server) handleSentiment(ctx context.Context, _ *mcp.CallToolRequest, in SentimentInput) (*mcp.CallToolResult, SentimentOutput, error) {
	_, span := s.tracer.Start(ctx, "mcp.market-sentiment")
	defer span.End()

	entry := s.reader.Current()
	out := SentimentOutput{
		Status:    string(entry.Status),
		LastError: string(entry.LastError),
		Records:   []RecordOutput{},
	}
	if !entry.FetchedAt.IsZero() {
		out.FetchedAt = entry.FetchedAt.UTC().Format(time.RFC3339)
		out.AgeSeconds = s.clock.Since(entry.FetchedAt).Seconds()
	}

	if in.Instrument != "" {
		instrument := domain.NormalizeInstrument(in.Instrument)
		span.SetAttributes(attribute.String("instrument", instrument))
		if !tracked(s.reader.Instruments(), instrument) {
			return nil, SentimentOutput{}, fmt.Errorf("untracked instrument %q (tracked: %v)", in.Instrument, s.reader.Instruments())
		}
		if r, ok := entry.Record(instrument); ok {
			out.Records = append(out.Records, toOutput(r))
		}
		return nil, out, nil
	}

	for _, r := range entry.Records {
		out.Records = append(out.Records, toOutput(r))
	}
	return nil, out, nil
}

func toOutput(r domain.SentimentRecord) RecordOutput {
	return RecordOutput{
		Instrument:   r.Instrument,
		BullishScore: r.BullishScore,
		BearishScore: r.BearishScore,
		Commentary:   r.Commentary,
		ScoresParsed: r.ScoresParsed,
	}
}

func tracked(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

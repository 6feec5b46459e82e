package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fx-sentiment/internal/domain"
	"fx-sentiment/internal/metrics"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ReportFetcher requests one free-text sentiment report per call. It never retries;
// every failure comes back as a *domain.FetchError.
type ReportFetcher struct {
	tracer      trace.Tracer
	llm         LLMClient
	limiter     *RateLimiter
	model       string
	instruments []string
}

func NewReportFetcher(tracer trace.Tracer, llm LLMClient, limiter *RateLimiter, model string, instruments []string) *ReportFetcher {
	return &ReportFetcher{
		tracer:      tracer,
		llm:         llm,
		limiter:     limiter,
		model:       model,
		instruments: append([]string(nil), instruments...),
	}
}

func (f *ReportFetcher) FetchReport(ctx context.Context) (string, error) {
	ctx, span := f.tracer.Start(ctx, "report-fetcher.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", f.model),
		attribute.Int("report.instruments", len(f.instruments)),
	)

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", f.fail(span, &domain.FetchError{
				Kind: domain.FailureTransient,
				Err:  fmt.Errorf("rate limit wait: %w", err),
			})
		}
	}

	start := time.Now()
	completion, err := f.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: f.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(BuildSystemPrompt()),
			openai.UserMessage(BuildReportPrompt(f.instruments)),
		},
	})
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", f.fail(span, classifyLLMError(err))
	}
	if len(completion.Choices) == 0 {
		return "", f.fail(span, &domain.FetchError{
			Kind: domain.FailureTransient,
			Err:  errors.New("no choices in LLM response"),
		})
	}

	report := completion.Choices[0].Message.Content
	if strings.TrimSpace(report) == "" {
		return "", f.fail(span, &domain.FetchError{
			Kind: domain.FailureTransient,
			Err:  errors.New("empty report in LLM response"),
		})
	}

	metrics.FetchAttemptsTotal.WithLabelValues("success").Inc()
	span.SetAttributes(attribute.Int("report.length", len(report)))
	return report, nil
}

func (f *ReportFetcher) fail(span trace.Span, fe *domain.FetchError) error {
	metrics.FetchAttemptsTotal.WithLabelValues(string(fe.Kind)).Inc()
	span.RecordError(fe)
	span.SetStatus(codes.Error, string(fe.Kind))
	return fe
}

// classifyLLMError maps an SDK error to the fetch failure taxonomy.
func classifyLLMError(err error) *domain.FetchError {
	if errors.Is(err, domain.ErrMissingCredentials) {
		return &domain.FetchError{Kind: domain.FailureFatal, Err: err}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		fe := &domain.FetchError{StatusCode: apiErr.StatusCode, Err: err}
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			fe.Kind = domain.FailureRateLimited
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
			http.StatusNotFound, http.StatusUnprocessableEntity:
			fe.Kind = domain.FailureFatal
		default:
			fe.Kind = domain.FailureTransient
		}
		return fe
	}

	return &domain.FetchError{Kind: domain.FailureTransient, Err: err}
}

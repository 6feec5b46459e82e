package bot

import (
	"fmt"
	"strings"
	"time"

	"fx-sentiment/internal/domain"

	"github.com/charmbracelet/log"
	tele "gopkg.in/telebot.v3"
)

// SentimentReader is the read side of the sentiment controller.
type SentimentReader interface {
	Current() domain.CacheEntry
	Instruments() []string
}

var (
	newBot   = tele.NewBot
	startBot = func(b *tele.Bot) { go b.Start() }
)

// StartTelegramBot registers the chat commands and starts long polling.
// It returns nil without error when no token is configured.
func StartTelegramBot(token string, reader SentimentReader) (*tele.Bot, error) {
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := newBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/sentiment", func(c tele.Context) error {
		return c.Send(SentimentReply(reader, c.Args()))
	})

	log.Info("Telegram bot started")
	startBot(b)
	return b, nil
}

// SentimentReply renders the answer to "/sentiment [PAIR]".
func SentimentReply(reader SentimentReader, args []string) string {
	entry := reader.Current()
	if len(args) == 0 {
		return FormatEntry(entry)
	}

	instrument := domain.NormalizeInstrument(args[0])
	supported := strings.Join(reader.Instruments(), ", ")
	if !contains(reader.Instruments(), instrument) {
		return fmt.Sprintf("Unknown pair: %s\nTracked: %s", args[0], supported)
	}
	record, ok := entry.Record(instrument)
	if !ok {
		return fmt.Sprintf("%s\nNo sentiment yet (status: %s)", instrument, entry.Status)
	}
	return fmt.Sprintf("%s\nStatus: %s%s", FormatRecord(record), entry.Status, formatAge(entry))
}

// FormatEntry renders every record of entry, one block per instrument.
func FormatEntry(entry domain.CacheEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Market sentiment (%s%s)", entry.Status, formatAge(entry))
	if entry.LastError != "" {
		fmt.Fprintf(&sb, "\nLast error: %s", entry.LastError)
	}
	if len(entry.Records) == 0 {
		sb.WriteString("\nNo sentiment available yet")
		return sb.String()
	}
	for _, r := range entry.Records {
		sb.WriteString("\n\n")
		sb.WriteString(FormatRecord(r))
	}
	return sb.String()
}

func FormatRecord(r domain.SentimentRecord) string {
	scores := fmt.Sprintf("Bullish %.0f%% / Bearish %.0f%%", r.BullishScore, r.BearishScore)
	if !r.ScoresParsed {
		scores += " (estimated)"
	}
	return fmt.Sprintf("%s\n%s\n%s", r.Instrument, scores, strings.TrimSpace(r.Commentary))
}

func formatAge(entry domain.CacheEntry) string {
	if entry.FetchedAt.IsZero() {
		return ""
	}
	return ", fetched " + entry.FetchedAt.UTC().Format("15:04 MST")
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

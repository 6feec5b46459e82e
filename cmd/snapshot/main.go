package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"fx-sentiment/internal/bot"
	"fx-sentiment/internal/cache"
	"fx-sentiment/internal/config"
	"fx-sentiment/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	cmdShow = "show"
	cmdJSON = "json"
	usage   = "usage: go run ./cmd/snapshot [show|json]"
)

// snapshotReader is satisfied by *cache.SnapshotStore.
type snapshotReader interface {
	Latest(ctx context.Context) (domain.CacheEntry, bool, error)
}

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initRedisFunc  = cache.InitRedis
	newStoreFunc   = func(client *redis.Client, ttl time.Duration) snapshotReader {
		return cache.NewSnapshotStore(trace.NewNoopTracerProvider().Tracer("snapshot-cli"), client, ttl)
	}
)

var stdout io.Writer = os.Stdout

// Prints the sentiment entry last mirrored to Redis by the server.
func main() {
	_ = loadEnvFunc()

	cmd := cmdShow
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if cmd != cmdShow && cmd != cmdJSON {
		log.Fatalf("unknown command %q. %s", cmd, usage)
	}

	cfg := loadConfigFunc()
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := initRedisFunc(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("connect to redis: %v", err)
	}
	if client != nil {
		defer client.Close()
	}

	if err := run(ctx, newStoreFunc(client, cfg.SnapshotTTL()), cmd, stdout); err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func run(ctx context.Context, store snapshotReader, cmd string, out io.Writer) error {
	entry, ok, err := store.Latest(ctx)
	if err != nil {
		return err
	}
	if !ok {
		_, err := fmt.Fprintln(out, "no snapshot mirrored yet")
		return err
	}

	switch cmd {
	case cmdJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	default:
		_, err := fmt.Fprintln(out, bot.FormatEntry(entry))
		return err
	}
}

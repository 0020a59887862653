package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	redisadapter "github.com/target/totem-api/internal/adapters/redis"
	"github.com/target/totem-api/internal/service"
)

const (
	scanCount       = 100
	defaultBatchCap = 1000
	commandTimeout  = 2 * time.Minute
)

// keyKinds maps a --kind value to the key namespace under the cache prefix.
var keyKinds = map[string]string{
	"sessions":  redisadapter.SessionPrefix,
	"tokens":    redisadapter.TokenPrefix,
	"redirects": redisadapter.RedirectPrefix,
	"lists":     service.ListIDCacheKeyPrefix,
}

func kindNames() []string {
	names := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type keyOptions struct {
	Kind   string
	Match  string
	Limit  int
	DryRun bool
	Yes    bool
}

// patterns returns the SCAN patterns for opts under prefix.
func (o keyOptions) patterns(prefix string) []string {
	kinds := []string{o.Kind}
	if o.Kind == "all" {
		kinds = kindNames()
	}
	match := o.Match
	if match == "" {
		match = "*"
	}
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, prefix+keyKinds[k]+match)
	}
	return out
}

func parseKeyFlags(name string, args []string, destructive bool) (keyOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts keyOptions
	fs.StringVar(&opts.Kind, "kind", "", "Key kind: "+strings.Join(kindNames(), ", ")+" or all")
	fs.StringVar(&opts.Match, "match", "", "Optional glob applied after the kind namespace")
	if destructive {
		fs.BoolVar(&opts.DryRun, "dry-run", false, "Print actions without executing")
		fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	} else {
		fs.IntVar(&opts.Limit, "limit", 100, "Maximum keys to print (0 for no limit)")
	}

	if err := fs.Parse(args); err != nil {
		return keyOptions{}, err
	}

	opts.Kind = strings.ToLower(strings.TrimSpace(opts.Kind))
	opts.Match = strings.TrimSpace(opts.Match)
	if opts.Kind == "" {
		return keyOptions{}, errors.New("--kind is required")
	}
	if _, ok := keyKinds[opts.Kind]; !ok && opts.Kind != "all" {
		return keyOptions{}, fmt.Errorf("unknown --kind %q", opts.Kind)
	}
	if opts.Limit < 0 {
		return keyOptions{}, errors.New("--limit must be >= 0")
	}
	return opts, nil
}

type keyEntry struct {
	Key string
	TTL time.Duration
}

type inspectKeysRequest struct {
	Ctx      context.Context
	Client   redis.UniversalClient
	Logger   *slog.Logger
	Patterns []string
	Limit    int
}

type inspectKeysResponse struct {
	Entries []keyEntry
	Total   int
}

func inspectKeys(req *inspectKeysRequest) (inspectKeysResponse, error) {
	var resp inspectKeysResponse
	for _, pattern := range req.Patterns {
		iter := req.Client.Scan(req.Ctx, 0, pattern, scanCount).Iterator()
		for iter.Next(req.Ctx) {
			resp.Total++
			if req.Limit > 0 && len(resp.Entries) >= req.Limit {
				continue
			}
			key := iter.Val()
			ttl, err := req.Client.TTL(req.Ctx, key).Result()
			if err != nil {
				if req.Logger != nil {
					req.Logger.WarnContext(req.Ctx, "failed to fetch TTL", "key", key, "error", err)
				}
				ttl = -3
			}
			resp.Entries = append(resp.Entries, keyEntry{Key: key, TTL: ttl})
		}
		if err := iter.Err(); err != nil {
			return resp, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
	}
	sort.Slice(resp.Entries, func(i, j int) bool { return resp.Entries[i].Key < resp.Entries[j].Key })
	return resp, nil
}

func runListKeys(cc *commandContext, args []string) error {
	opts, err := parseKeyFlags("list-keys", args, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cc.Ctx, commandTimeout)
	defer cancel()

	client, closeClient, err := openRedis(cc)
	if err != nil {
		return err
	}
	defer closeClient()

	patterns := opts.patterns(cc.Config.Cache.KeyPrefix)
	cc.Logger.Info("scanning redis", "patterns", patterns)

	resp, err := inspectKeys(&inspectKeysRequest{
		Ctx:      ctx,
		Client:   client,
		Logger:   cc.Logger,
		Patterns: patterns,
		Limit:    opts.Limit,
	})
	if err != nil {
		return err
	}
	return printKeyEntries(cc.Out, resp)
}

func printKeyEntries(w io.Writer, resp inspectKeysResponse) error {
	if resp.Total == 0 {
		return writeln(w, "(no keys found)")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "KEY\tTTL"); err != nil {
		return fmt.Errorf("print key header: %w", err)
	}
	for _, e := range resp.Entries {
		if err := writef(tw, "%s\t%s\n", e.Key, formatRedisTTL(e.TTL)); err != nil {
			return fmt.Errorf("print key row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush key table: %w", err)
	}

	if len(resp.Entries) < resp.Total {
		return writef(w, "\nShowing %d of %d keys\n", len(resp.Entries), resp.Total)
	}
	return writef(w, "\nTotal keys: %d\n", resp.Total)
}

func (o keyOptions) confirmation(prefix string) confirmation {
	warning := "WARNING: deleted keys are not recoverable."
	if o.Kind == "sessions" || o.Kind == "all" {
		warning = "WARNING: deleting sessions signs every matching kiosk out."
	}
	return confirmation{
		Action:  "delete keys",
		Target:  strings.Join(o.patterns(prefix), ", "),
		Warning: warning,
		Skip:    o.DryRun || o.Yes,
	}
}

type deleteKeysRequest struct {
	Ctx      context.Context
	Logger   *slog.Logger
	Redis    redis.UniversalClient
	Patterns []string
	DryRun   bool
	BatchCap int
	Out      io.Writer
}

type deleteStats struct {
	total    int
	deleted  int64
	failures int
}

func deleteKeys(req *deleteKeysRequest) (deleteStats, error) {
	batchCap := req.BatchCap
	if batchCap <= 0 {
		batchCap = defaultBatchCap
	}

	var stats deleteStats
	for _, pattern := range req.Patterns {
		if req.Logger != nil {
			req.Logger.Info("scanning redis", "pattern", pattern, "dry_run", req.DryRun)
		}

		iter := req.Redis.Scan(req.Ctx, 0, pattern, scanCount).Iterator()
		batch := make([]string, 0, batchCap)
		for iter.Next(req.Ctx) {
			stats.total++
			batch = append(batch, iter.Val())
			if len(batch) == batchCap {
				req.flush(batch, &stats)
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return stats, fmt.Errorf("redis scan: %w", err)
		}
		req.flush(batch, &stats)
	}
	return stats, nil
}

func (req *deleteKeysRequest) flush(batch []string, stats *deleteStats) {
	if len(batch) == 0 {
		return
	}
	if req.DryRun {
		stats.deleted += int64(len(batch))
		return
	}
	n, err := req.Redis.Del(req.Ctx, batch...).Result()
	if err != nil {
		stats.failures++
		if req.Logger != nil {
			req.Logger.Error("failed to delete keys", "count", len(batch), "error", err)
		}
		if req.Out != nil {
			_ = writef(req.Out, "Failed to delete %d keys: %v\n", len(batch), err)
		}
		return
	}
	stats.deleted += n
}

func runClearKeys(cc *commandContext, args []string) error {
	opts, err := parseKeyFlags("clear-keys", args, true)
	if err != nil {
		return err
	}
	prefix := cc.Config.Cache.KeyPrefix
	if err := confirmAction(cc.In, cc.Out, opts.confirmation(prefix)); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cc.Ctx, commandTimeout)
	defer cancel()

	client, closeClient, err := openRedis(cc)
	if err != nil {
		return err
	}
	defer closeClient()

	stats, err := deleteKeys(&deleteKeysRequest{
		Ctx:      ctx,
		Logger:   cc.Logger,
		Redis:    client,
		Patterns: opts.patterns(prefix),
		DryRun:   opts.DryRun,
		Out:      cc.Out,
	})
	if err != nil {
		return err
	}
	return printDeleteSummary(cc.Out, stats, opts.DryRun)
}

func printDeleteSummary(w io.Writer, stats deleteStats, dryRun bool) error {
	if stats.total == 0 {
		return writeln(w, "No matching keys found in Redis")
	}
	if dryRun {
		return writef(w, "Dry-run: would delete %d/%d keys\n", stats.deleted, stats.total)
	}
	if err := writef(w, "Deleted %d/%d keys\n", stats.deleted, stats.total); err != nil {
		return err
	}
	if stats.failures > 0 {
		return writef(w, "Failed batches: %d\n", stats.failures)
	}
	return nil
}

func formatRedisTTL(ttl time.Duration) string {
	switch {
	case ttl == -1:
		return "no expiry"
	case ttl == -2:
		return "missing"
	case ttl == -3:
		return "unknown"
	case ttl < 0:
		return ttl.String()
	}
	return ttl.Round(time.Second).String()
}

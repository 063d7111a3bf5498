package discord

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/pkg/cmd"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CommandOverwriter is the part of *discordgo.Session used to publish
// command definitions.
type CommandOverwriter interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Syncer publishes the command tree to Discord. Each scope (global, or one
// guild) is hashed and only overwritten when the hash differs from the one
// cached from the last successful sync.
type Syncer struct {
	client   CommandOverwriter
	cacheDir string
	log      *zap.Logger
	limit    int

	// Force overwrites every scope regardless of the cached hash.
	Force bool
}

func NewSyncer(client CommandOverwriter, cacheDir string, log *zap.Logger) *Syncer {
	return &Syncer{client: client, cacheDir: cacheDir, log: log, limit: 4}
}

// Sync publishes every scope of reg, at most limit scopes at a time. It
// returns how many scopes were overwritten.
func (s *Syncer) Sync(ctx context.Context, appID string, reg *cmd.Registry) (int, error) {
	scopes := Definitions(reg)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	updated := make(chan string, len(scopes))

	for scope, defs := range scopes {
		g.Go(func() error {
			changed, err := s.syncScope(ctx, appID, scope, defs)
			if err != nil {
				return fmt.Errorf("sync %s: %w", scopeName(scope), err)
			}
			if changed {
				updated <- scope
			}
			return nil
		})
	}
	err := g.Wait()
	close(updated)
	return len(updated), err
}

func (s *Syncer) syncScope(ctx context.Context, appID, scope string, defs []*discordgo.ApplicationCommand) (bool, error) {
	hash := hashCommands(defs)
	if cached, _ := s.loadHash(scope); !s.Force && cached == hash {
		s.log.Debug("commands unchanged", zap.String("scope", scopeName(scope)))
		return false, nil
	}

	if _, err := s.client.ApplicationCommandBulkOverwrite(appID, scope, defs, discordgo.WithContext(ctx)); err != nil {
		return false, err
	}
	s.log.Info("commands published", zap.String("scope", scopeName(scope)), zap.Int("count", len(defs)))

	if err := s.saveHash(scope, hash); err != nil {
		s.log.Warn("failed to cache command hash", zap.String("scope", scopeName(scope)), zap.Error(err))
	}
	return true, nil
}

func scopeName(scope string) string {
	if scope == GlobalScope {
		return "global"
	}
	return "guild " + scope
}

// --- Command hash cache ---

type cacheEntry struct {
	Hash string `json:"hash"`
}

func (s *Syncer) cachePath(scope string) string {
	name := scope
	if name == GlobalScope {
		name = "global"
	}
	return filepath.Join(s.cacheDir, name+".json")
}

func (s *Syncer) loadHash(scope string) (string, error) {
	data, err := os.ReadFile(s.cachePath(scope))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", err
	}
	return e.Hash, nil
}

func (s *Syncer) saveHash(scope, hash string) error {
	path := s.cachePath(scope)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cacheEntry{Hash: hash}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// --- Command hashing ---

// hashCommands returns a deterministic SHA-1 over the stable fields of a
// scope's definitions. Option order is kept since Discord treats it as
// significant.
func hashCommands(defs []*discordgo.ApplicationCommand) string {
	stable := make([]map[string]any, 0, len(defs))
	for _, c := range defs {
		entry := map[string]any{
			"name":        c.Name,
			"description": c.Description,
			"type":        c.Type,
		}
		if len(c.Options) > 0 {
			entry["options"] = normalizeOptions(c.Options)
		}
		stable = append(stable, entry)
	}
	data, _ := json.Marshal(stable)
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	return out
}

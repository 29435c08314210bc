package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/cardkey/cardkey/internal/config"
	"github.com/cardkey/cardkey/internal/model"
)

const (
	DefaultCount  = 10
	DefaultLength = 16

	// MaxCount bounds a single batch; the whole store is rewritten per run.
	MaxCount = 1_000_000

	// Separator splits the random part of a code into groups of GroupSize.
	Separator = '-'
	GroupSize = 4

	alphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	attemptsPerKey = 100
)

var ErrInvalidOptions = errors.New("invalid generate options")

// GenerateOptions controls a generation run. Zero values select the
// defaults: 10 keys, no prefix, 16 characters.
type GenerateOptions struct {
	Count  int
	Prefix string
	Length int // total code length including prefix and separators
}

func (o GenerateOptions) normalize() (GenerateOptions, error) {
	if o.Count == 0 {
		o.Count = DefaultCount
	}
	if o.Length == 0 {
		o.Length = DefaultLength
	}
	if o.Count < 0 {
		return o, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidOptions, o.Count)
	}
	if o.Count > MaxCount {
		return o, fmt.Errorf("%w: count %d exceeds the maximum of %d", ErrInvalidOptions, o.Count, MaxCount)
	}
	for _, r := range o.Prefix {
		if !isAlnum(r) && !(r >= 'a' && r <= 'z') && r != Separator {
			return o, fmt.Errorf("%w: prefix %q may only contain letters, digits and %q", ErrInvalidOptions, o.Prefix, Separator)
		}
	}
	o.Prefix = strings.ToUpper(o.Prefix)
	if o.Length <= len(o.Prefix) {
		return o, fmt.Errorf("%w: length %d must exceed prefix length %d", ErrInvalidOptions, o.Length, len(o.Prefix))
	}
	return o, nil
}

// Batch is the output of one generation run. All records share CreatedAt.
type Batch struct {
	Records   []model.KeyRecord
	Requested int
	Attempts  int
	CreatedAt time.Time
}

// Partial reports whether the attempt cap stopped generation early.
func (b Batch) Partial() bool {
	return len(b.Records) < b.Requested
}

// Generator creates batches of redemption codes and appends them to a store.
type Generator struct {
	store  RecordStore
	hasher *Hasher
	logger *slog.Logger

	rand io.Reader
	now  func() time.Time
}

func NewGenerator(store RecordStore, hasher *Hasher, logger *slog.Logger) *Generator {
	return &Generator{
		store:  store,
		hasher: hasher,
		logger: logger,
		rand:   rand.Reader,
		now:    time.Now,
	}
}

// Generate synthesizes a batch in memory without touching the store. Codes
// listed in exclude are treated as already taken. At most Count*100
// candidates are drawn; if that is not enough the partial batch is returned.
func (g *Generator) Generate(opts GenerateOptions, exclude map[string]struct{}) (Batch, error) {
	opts, err := opts.normalize()
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{
		Records:   make([]model.KeyRecord, 0, min(opts.Count, 1024)),
		Requested: opts.Count,
		CreatedAt: g.now().UTC(),
	}

	seen := make(map[string]struct{}, len(exclude)+min(opts.Count, 1024))
	for code := range exclude {
		seen[code] = struct{}{}
	}

	maxAttempts := opts.Count * attemptsPerKey
	for len(batch.Records) < opts.Count && batch.Attempts < maxAttempts {
		batch.Attempts++

		code, err := g.synthesize(opts.Prefix, opts.Length)
		if err != nil {
			return Batch{}, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		batch.Records = append(batch.Records, model.KeyRecord{
			Code:      code,
			Hash:      g.hasher.Sum(code),
			CreatedAt: batch.CreatedAt,
		})
	}
	return batch, nil
}

// Run generates a batch, appends it to the stored collection and saves it.
// A missing store counts as empty. A malformed store is logged and replaced:
// the new batch is kept, the unreadable records are not carried over.
func (g *Generator) Run(ctx context.Context, opts GenerateOptions) (Batch, error) {
	prior, err := g.store.Load(ctx)
	switch {
	case err == nil:
		g.logger.Debug("loaded existing keys", "count", len(prior))
	case errors.Is(err, config.ErrStoreMissing):
		g.logger.Debug("no existing key store, starting empty")
		prior = nil
	case errors.Is(err, config.ErrStoreCorrupt):
		g.logger.Warn("existing key store is malformed, previous keys will not be kept", "error", err)
		prior = nil
	default:
		return Batch{}, fmt.Errorf("load existing keys: %w", err)
	}

	exclude := make(map[string]struct{}, len(prior))
	for _, r := range prior {
		exclude[r.Code] = struct{}{}
	}

	batch, err := g.Generate(opts, exclude)
	if err != nil {
		return Batch{}, err
	}
	if batch.Partial() {
		g.logger.Warn("generated fewer keys than requested",
			"generated", len(batch.Records), "requested", batch.Requested, "attempts", batch.Attempts)
	}

	all := make([]model.KeyRecord, 0, len(prior)+len(batch.Records))
	all = append(all, prior...)
	all = append(all, batch.Records...)
	if err := g.store.Save(ctx, all); err != nil {
		return Batch{}, fmt.Errorf("save keys: %w", err)
	}

	g.logger.Info("keys generated", "count", len(batch.Records), "total", len(all))
	return batch, nil
}

// synthesize builds prefix + random groups so that the result has exactly
// length characters and never ends with a separator. When a group boundary
// falls on the last position the final group carries GroupSize+1 characters,
// e.g. length 10 gives "ABCD-EFGHI".
func (g *Generator) synthesize(prefix string, length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	b.WriteString(prefix)

	size := big.NewInt(int64(len(alphabet)))
	emitted := 0
	for remaining := length - len(prefix); remaining > 0; remaining-- {
		if emitted > 0 && emitted%GroupSize == 0 && remaining > 1 {
			b.WriteByte(Separator)
			remaining--
		}
		n, err := rand.Int(g.rand, size)
		if err != nil {
			return "", fmt.Errorf("generate random key: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
		emitted++
	}
	return b.String(), nil
}

func isAlnum(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

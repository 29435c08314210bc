package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardkey/cardkey/internal/config"
	"github.com/cardkey/cardkey/internal/model"
)

var ErrAlreadyUsed = errors.New("key already used")

// Verifier checks user-supplied codes against the key store and consumes
// them on request.
type Verifier struct {
	store  RecordStore
	hasher *Hasher
	logger *slog.Logger

	now func() time.Time
}

func NewVerifier(store RecordStore, hasher *Hasher, logger *slog.Logger) *Verifier {
	return &Verifier{
		store:  store,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// Normalize uppercases input and drops every character outside A-Z and 0-9,
// so separators, spaces and punctuation are ignored.
func Normalize(input string) string {
	upper := strings.ToUpper(input)
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripSeparators(code string) string {
	return strings.ReplaceAll(code, string(Separator), "")
}

// Load returns the stored collection. Any failure wraps
// config.ErrStoreUnavailable (or a context error); verification has no
// fallback when the store cannot be read.
func (v *Verifier) Load(ctx context.Context) ([]model.KeyRecord, error) {
	records, err := v.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load key store: %w", err)
	}
	return records, nil
}

// Check applies the outcome policy to records without side effects. The
// first record in storage order whose separator-free code equals the
// normalized input is used.
func (v *Verifier) Check(records []model.KeyRecord, input string) model.VerifyResult {
	want := Normalize(input)

	for i := range records {
		if stripSeparators(records[i].Code) != want {
			continue
		}
		rec := records[i]

		if rec.Used {
			return model.VerifyResult{Kind: model.ResultAlreadyUsed, Record: &rec}
		}
		if !v.hasher.Verify(rec.Code, rec.Hash) {
			return model.VerifyResult{Kind: model.ResultHashMismatch}
		}
		return model.VerifyResult{Valid: true, Kind: model.ResultSuccess, Record: &rec}
	}
	return model.VerifyResult{Kind: model.ResultNotFound}
}

// Verify loads the store and checks input. The error is only set when the
// store cannot be loaded; invalid codes are reported through the result.
func (v *Verifier) Verify(ctx context.Context, input string) (model.VerifyResult, error) {
	records, err := v.Load(ctx)
	if err != nil {
		return model.VerifyResult{}, err
	}

	res := v.Check(records, input)
	v.logger.Debug("key verified", "input", input, "result", res.Kind)
	return res, nil
}

// Consume marks the record with exactly this code as used and rewrites the
// store. The caller is expected to have obtained a SUCCESS result first.
// UsedBy.Timestamp and UsedBy.ConsumptionID are filled in when empty.
func (v *Verifier) Consume(ctx context.Context, code string, by model.UsedBy) (*model.KeyRecord, error) {
	records, err := v.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range records {
		if records[i].Code == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("consume %q: %w", code, config.ErrNotFound)
	}
	if records[idx].Used {
		return nil, fmt.Errorf("consume %q: %w", code, ErrAlreadyUsed)
	}

	now := v.now().UTC()
	if by.Timestamp.IsZero() {
		by.Timestamp = now
	}
	if by.ConsumptionID == "" {
		by.ConsumptionID = uuid.NewString()
	}

	records[idx].Used = true
	records[idx].UsedAt = &now
	records[idx].UsedBy = &by

	if err := v.store.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("save keys: %w", err)
	}

	v.logger.Info("key consumed", "key", code, "consumption_id", by.ConsumptionID)
	rec := records[idx]
	return &rec, nil
}

// Stats summarizes the stored collection.
func (v *Verifier) Stats(ctx context.Context) (model.Stats, error) {
	records, err := v.Load(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return model.Summarize(records), nil
}

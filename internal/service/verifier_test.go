package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cardkey/cardkey/internal/config"
	"github.com/cardkey/cardkey/internal/model"
)

func newTestVerifier(t *testing.T, store RecordStore, secret string) *Verifier {
	t.Helper()
	v := NewVerifier(store, NewHasher(secret), testLogger())
	v.now = func() time.Time { return testTime.Add(time.Hour) }
	return v
}

// seedStore saves records built from codes, hashed with the test secret.
func seedStore(t *testing.T, store RecordStore, codes ...string) []model.KeyRecord {
	t.Helper()
	h := NewHasher("test-secret")
	records := make([]model.KeyRecord, len(codes))
	for i, c := range codes {
		records[i] = model.KeyRecord{Code: c, Hash: h.Sum(c), CreatedAt: testTime}
	}
	if err := store.Save(context.Background(), records); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return records
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AB12-CD34", "AB12CD34"},
		{"ab12cd34", "AB12CD34"},
		{"AB12 CD34", "AB12CD34"},
		{"  ab12_cd34!\n", "AB12CD34"},
		{"", ""},
		{"----", ""},
	}

	for _, tt := range tests {
		got := Normalize(tt.in)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize not idempotent: %q -> %q", got, again)
		}
	}
}

func TestVerifySeparatorInsensitive(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	seedStore(t, store, "AB12-CD34")
	v := newTestVerifier(t, store, "test-secret")

	for _, input := range []string{"AB12-CD34", "ab12cd34", "AB12 CD34", " ab12-cd34\n"} {
		res, err := v.Verify(ctx, input)
		if err != nil {
			t.Fatalf("Verify(%q): %v", input, err)
		}
		if res.Kind != model.ResultSuccess || !res.Valid {
			t.Errorf("Verify(%q) = %s, want SUCCESS", input, res.Kind)
			continue
		}
		if res.Record.Code != "AB12-CD34" {
			t.Errorf("Verify(%q) matched %q", input, res.Record.Code)
		}
	}
}

func TestVerifyFreshCode(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	g := newTestGenerator(t, store)
	v := newTestVerifier(t, store, "test-secret")

	batch, err := g.Run(ctx, GenerateOptions{Count: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, want := range batch.Records {
		res, err := v.Verify(ctx, want.Code)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if res.Kind != model.ResultSuccess {
			t.Fatalf("Verify(%q) = %s, want SUCCESS", want.Code, res.Kind)
		}
		got := res.Record
		if got.Code != want.Code || got.Hash != want.Hash || !got.CreatedAt.Equal(want.CreatedAt) || got.Used {
			t.Errorf("matched record %+v, want %+v", *got, want)
		}
	}
}

func TestVerifyNotFound(t *testing.T) {
	ctx := context.Background()

	empty := newMemStore(t)
	seedStore(t, empty)
	unrelated := newMemStore(t)
	seedStore(t, unrelated, "AAAA-BBBB-CCCC-DDDD", "ZZZZ-ZZZZ-ZZZZ-ZZZY")

	for name, store := range map[string]*config.Store{"empty": empty, "unrelated": unrelated} {
		v := newTestVerifier(t, store, "test-secret")
		res, err := v.Verify(ctx, "ZZZZ-ZZZZ-ZZZZ-ZZZZ")
		if err != nil {
			t.Fatalf("%s: Verify: %v", name, err)
		}
		if res.Kind != model.ResultNotFound || res.Valid || res.Record != nil {
			t.Errorf("%s: got %+v, want NOT_FOUND without record", name, res)
		}
	}
}

func TestVerifyStoreUnavailable(t *testing.T) {
	v := newTestVerifier(t, newMemStore(t), "test-secret")

	_, err := v.Verify(context.Background(), "AAAA")
	if !errors.Is(err, config.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := v.Stats(context.Background()); !errors.Is(err, config.ErrStoreUnavailable) {
		t.Errorf("Stats: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestConsumeThenAlreadyUsed(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	seedStore(t, store, "AAAA-BBBB", "CCCC-DDDD")
	v := newTestVerifier(t, store, "test-secret")

	rec, err := v.Consume(ctx, "AAAA-BBBB", model.UsedBy{UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !rec.Used || rec.UsedAt == nil || rec.UsedBy == nil {
		t.Fatalf("consumed record incomplete: %+v", rec)
	}
	if rec.UsedBy.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q, want %q", rec.UsedBy.UserAgent, "test-agent")
	}
	if rec.UsedBy.ConsumptionID == "" || rec.UsedBy.Timestamp.IsZero() {
		t.Errorf("expected consumption id and timestamp to be filled: %+v", rec.UsedBy)
	}
	firstUsedAt := *rec.UsedAt

	// Later checks see the same terminal state.
	v.now = func() time.Time { return testTime.Add(48 * time.Hour) }
	for i := 0; i < 2; i++ {
		res, err := v.Verify(ctx, "aaaabbbb")
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if res.Kind != model.ResultAlreadyUsed || res.Valid {
			t.Fatalf("got %s, want ALREADY_USED", res.Kind)
		}
		if res.Record == nil || res.Record.UsedAt == nil || !res.Record.UsedAt.Equal(firstUsedAt) {
			t.Errorf("UsedAt changed: got %+v, want %v", res.Record, firstUsedAt)
		}
	}

	if _, err := v.Consume(ctx, "AAAA-BBBB", model.UsedBy{UserAgent: "again"}); !errors.Is(err, ErrAlreadyUsed) {
		t.Errorf("second Consume: expected ErrAlreadyUsed, got %v", err)
	}

	stored, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored[0].UsedBy.UserAgent != "test-agent" || !stored[0].UsedAt.Equal(firstUsedAt) {
		t.Errorf("terminal record was reassigned: %+v", stored[0])
	}
	if stored[1].Used || stored[1].UsedAt != nil || stored[1].UsedBy != nil {
		t.Errorf("unrelated record was modified: %+v", stored[1])
	}
}

func TestConsumeUnknownCode(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	seedStore(t, store, "AAAA-BBBB")
	v := newTestVerifier(t, store, "test-secret")

	// Consume takes the stored form, not user input.
	if _, err := v.Consume(ctx, "aaaabbbb", model.UsedBy{}); !errors.Is(err, config.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyHashMismatch(t *testing.T) {
	ctx := context.Background()

	t.Run("tampered hash", func(t *testing.T) {
		store := newMemStore(t)
		records := seedStore(t, store, "AB12-CD34")
		records[0].Hash = "0000000000000000"
		if err := store.Save(ctx, records); err != nil {
			t.Fatalf("Save: %v", err)
		}

		res, err := newTestVerifier(t, store, "test-secret").Verify(ctx, "AB12-CD34")
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if res.Kind != model.ResultHashMismatch || res.Valid {
			t.Errorf("got %s, want HASH_MISMATCH", res.Kind)
		}
	})

	t.Run("tampered code", func(t *testing.T) {
		store := newMemStore(t)
		records := seedStore(t, store, "AB12-CD34")
		records[0].Code = "AB-12CD34" // same characters, different stored form
		if err := store.Save(ctx, records); err != nil {
			t.Fatalf("Save: %v", err)
		}

		res, err := newTestVerifier(t, store, "test-secret").Verify(ctx, "AB12-CD34")
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if res.Kind != model.ResultHashMismatch {
			t.Errorf("got %s, want HASH_MISMATCH", res.Kind)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		store := newMemStore(t)
		seedStore(t, store, "AB12-CD34")

		res, err := newTestVerifier(t, store, "another-secret").Verify(ctx, "AB12-CD34")
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if res.Kind != model.ResultHashMismatch {
			t.Errorf("got %s, want HASH_MISMATCH", res.Kind)
		}
	})
}

func TestCheckOutcomeOrder(t *testing.T) {
	h := NewHasher("test-secret")
	usedAt := testTime
	records := []model.KeyRecord{
		// used and tampered: ALREADY_USED wins over HASH_MISMATCH
		{Code: "AAAA-0001", Hash: "bogus", Used: true, UsedAt: &usedAt},
		{Code: "AAAA-0002", Hash: h.Sum("AAAA-0002")},
		// duplicate code: the first stored record wins
		{Code: "AAAA-0002", Hash: "bogus"},
	}
	v := NewVerifier(nil, h, testLogger())

	if got := v.Check(records, "AAAA-0001").Kind; got != model.ResultAlreadyUsed {
		t.Errorf("got %s, want ALREADY_USED", got)
	}
	if got := v.Check(records, "AAAA0002").Kind; got != model.ResultSuccess {
		t.Errorf("got %s, want SUCCESS", got)
	}
	if got := v.Check(records, "").Kind; got != model.ResultNotFound {
		t.Errorf("empty input: got %s, want NOT_FOUND", got)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	seedStore(t, store, "AAAA", "BBBB", "CCCC")
	v := newTestVerifier(t, store, "test-secret")

	if _, err := v.Consume(ctx, "BBBB", model.UsedBy{UserAgent: "t"}); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	s, err := v.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s != (model.Stats{Total: 3, Used: 1, Available: 2}) {
		t.Errorf("got %+v, want total=3 used=1 available=2", s)
	}
}

func TestGenerateVerifyConsumeFlow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	g := newTestGenerator(t, store)
	v := newTestVerifier(t, store, "test-secret")

	batch, err := g.Run(ctx, GenerateOptions{Count: 3, Prefix: "VIP", Length: 12})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(batch.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(batch.Records))
	}
	seen := map[string]bool{}
	for _, r := range batch.Records {
		if !strings.HasPrefix(r.Code, "VIP") || len(r.Code) != 12 || seen[r.Code] {
			t.Errorf("unexpected code %q", r.Code)
		}
		seen[r.Code] = true
	}

	code := batch.Records[1].Code
	res, err := v.Verify(ctx, code)
	if err != nil || res.Kind != model.ResultSuccess {
		t.Fatalf("Verify: got %v / %v, want SUCCESS", res.Kind, err)
	}

	rec, err := v.Consume(ctx, res.Record.Code, model.UsedBy{UserAgent: "flow-test"})
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !rec.Used {
		t.Error("expected record to be used")
	}

	res, err = v.Verify(ctx, code)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Kind != model.ResultAlreadyUsed {
		t.Errorf("got %s, want ALREADY_USED", res.Kind)
	}

	s, err := v.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.Total != 3 || s.Used != 1 || s.Available != 2 {
		t.Errorf("unexpected stats %+v", s)
	}
}

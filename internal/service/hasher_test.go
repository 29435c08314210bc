package service

import (
	"testing"

	"github.com/cardkey/cardkey/internal/config"
)

func TestHasherKnownValues(t *testing.T) {
	tests := []struct {
		secret string
		code   string
		want   string
	}{
		{config.DefaultSecret, "AB12-CD34", "a3f1b7370c840e1c"},
		{"s3cret", "VIP1-ABCD-EF23", "8d87f3d50fbcb839"},
	}

	for _, tt := range tests {
		got := NewHasher(tt.secret).Sum(tt.code)
		if got != tt.want {
			t.Errorf("Sum(%q) with secret %q = %q, want %q", tt.code, tt.secret, got, tt.want)
		}
		if len(got) != HashLength {
			t.Errorf("len(Sum) = %d, want %d", len(got), HashLength)
		}
	}
}

func TestHasherVerify(t *testing.T) {
	h := NewHasher("s3cret")
	hash := h.Sum("AAAA-BBBB")

	if !h.Verify("AAAA-BBBB", hash) {
		t.Error("expected hash to verify for its own code")
	}
	if h.Verify("AAAA-BBBC", hash) {
		t.Error("expected hash to fail for a different code")
	}
	if h.Verify("AAAABBBB", hash) {
		t.Error("hash must cover separators")
	}
	if NewHasher("other").Verify("AAAA-BBBB", hash) {
		t.Error("expected hash to fail under a different secret")
	}
	if h.Verify("AAAA-BBBB", "") {
		t.Error("expected empty hash to fail")
	}
}

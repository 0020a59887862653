package auth

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSession_IsGuest(t *testing.T) {
	s := Session{Role: RoleGuest}
	if !s.IsGuest() {
		t.Fatalf("expected guest")
	}
	if (Session{Role: RoleUser}).IsGuest() {
		t.Fatalf("did not expect guest")
	}
}

func TestSession_Account(t *testing.T) {
	s := Session{AccountID: "oid.tid", Username: "ada@contoso.com", FirstName: "Ada", LastName: "Lovelace"}
	acc := s.Account()
	if acc.ID != "oid.tid" || acc.Username != "ada@contoso.com" || acc.Name != "Ada Lovelace" {
		t.Fatalf("unexpected account: %+v", acc)
	}
	if !(Session{}).Account().IsZero() {
		t.Fatalf("expected zero account for empty session")
	}
}

func TestTokenSet_Valid(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tok  TokenSet
		skew time.Duration
		want bool
	}{
		{name: "empty", tok: TokenSet{}, want: false},
		{name: "no expiry", tok: TokenSet{AccessToken: "a"}, want: false},
		{name: "expired", tok: TokenSet{AccessToken: "a", ExpiresOn: now.Add(-time.Minute)}, want: false},
		{name: "inside skew", tok: TokenSet{AccessToken: "a", ExpiresOn: now.Add(2 * time.Minute)}, skew: 5 * time.Minute, want: false},
		{name: "fresh", tok: TokenSet{AccessToken: "a", ExpiresOn: now.Add(time.Hour)}, skew: 5 * time.Minute, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.Valid(now, tt.skew); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRecoverableByRedirect(t *testing.T) {
	if !IsRecoverableByRedirect(fmt.Errorf("refresh: %w", ErrInteractionRequired)) {
		t.Fatalf("wrapped interaction required should be recoverable")
	}
	if !IsRecoverableByRedirect(ErrMonitorWindowTimeout) {
		t.Fatalf("monitor window timeout should be recoverable")
	}
	if IsRecoverableByRedirect(errors.New("network down")) {
		t.Fatalf("generic errors are not recoverable")
	}
	if IsRecoverableByRedirect(nil) {
		t.Fatalf("nil is not recoverable")
	}
}

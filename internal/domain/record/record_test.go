package record

import (
	"errors"
	"testing"
	"time"
)

func TestCheckers(t *testing.T) {
	tests := []struct {
		name    string
		check   func() error
		wantErr bool
	}{
		{"name ok", func() error { return CheckName("fullName", "Sally Smith") }, false},
		{"name blank", func() error { return CheckName("fullName", "   ") }, true},
		{"email ok", func() error { return CheckEmail("emailAddress", "sally@example.com") }, false},
		{"email no tld", func() error { return CheckEmail("emailAddress", "sally@example") }, true},
		{"email with space", func() error { return CheckEmail("emailAddress", "sal ly@example.com") }, true},
		{"phone dashed", func() error { return CheckPhone("contactNumber", "905-555-1234") }, false},
		{"phone plain", func() error { return CheckPhone("contactNumber", "9055551234") }, false},
		{"phone country", func() error { return CheckPhone("contactNumber", "1+905-555-1234") }, false},
		{"phone short", func() error { return CheckPhone("contactNumber", "555-1234") }, true},
		{"min length ok", func() error { return CheckMinLength("userName", "bob", 3) }, false},
		{"min length short", func() error { return CheckMinLength("userName", "bo", 3) }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.check()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestJoin_EmptyFieldIsInvalid(t *testing.T) {
	if _, ok := Join("contact", "a", "", "c"); ok {
		t.Fatal("expected join to fail with an empty field")
	}
	text, ok := Join("contact", "a", "b", "c")
	if !ok || text != "a,b,c" {
		t.Fatalf("got %q, %v", text, ok)
	}
}

func TestSplit_Arity(t *testing.T) {
	if _, err := Split("contact", "a,b", 3); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	parts, err := Split("contact", "a,b,c", 3)
	if err != nil || len(parts) != 3 {
		t.Fatalf("got %v, %v", parts, err)
	}
}

func TestKey_RoundTrip(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	key := Key(KindContact, at)
	if key != "contact_1700000000000" {
		t.Fatalf("got %q", key)
	}
	kind, millis, ok := ParseKey(key)
	if !ok || kind != KindContact || millis != 1700000000000 {
		t.Fatalf("got %q %d %v", kind, millis, ok)
	}
	if !HasKind(Key(KindSignUp, at), KindSignUp) {
		t.Fatal("expected signUp key to have signUp kind")
	}
	if HasKind("user", KindContact) {
		t.Fatal("session key must not parse as a record key")
	}
}

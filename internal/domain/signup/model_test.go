package signup

import (
	"errors"
	"testing"

	"volunteerconnect/internal/domain/record"
)

func TestSignUp_RoundTrip(t *testing.T) {
	s := New("Jim Park", "jim@example.org", "Driver")
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	text, ok := s.Serialize()
	if !ok || text != "Jim Park,jim@example.org,Driver" {
		t.Fatalf("got %q %v", text, ok)
	}
	back := New("", "", "")
	if err := back.Deserialize(text); err != nil {
		t.Fatal(err)
	}
	if *back != *s {
		t.Fatalf("mismatch %+v", back)
	}
}

func TestSignUp_Invalid(t *testing.T) {
	if _, ok := New("Jim", "", "Driver").Serialize(); ok {
		t.Fatal("expected missing email to fail serialize")
	}
	if err := New("Jim", "jim@", "Driver").Validate(); !errors.Is(err, record.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	s := New("Jim", "jim@example.org", "Driver")
	if err := s.SetPreferredRole("  "); err == nil {
		t.Fatal("expected blank role to fail")
	}
	if s.PreferredRole() != "Driver" {
		t.Fatal("failed setter mutated the record")
	}
	if err := s.Deserialize("a,b,c,d"); err == nil || s.FullName() != "Jim" {
		t.Fatal("arity mismatch must fail and leave the record")
	}
}

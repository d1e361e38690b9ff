package verification

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in    string
		want  IdentifierType
		value string
	}{
		{in: "a@b.com", want: Email, value: "a@b.com"},
		{in: "  first.last@shop.co.uk ", want: Email, value: "first.last@shop.co.uk"},
		{in: "+1 555-123-4567", want: Phone, value: "+1 555-123-4567"},
		{in: "5551234567", want: Phone, value: "5551234567"},
	}
	for _, tc := range cases {
		id, err := Classify(tc.in)
		if err != nil {
			t.Fatalf("classify %q: %v", tc.in, err)
		}
		if id.Type != tc.want || id.Value != tc.value {
			t.Fatalf("classify %q = %+v", tc.in, id)
		}
	}
}

func TestClassifyRejectsEverythingElse(t *testing.T) {
	for _, in := range []string{"", "   ", "hello", "a@b", "a b@c.com", "12345", "+1-555", "555-12a-4567"} {
		_, err := Classify(in)
		if !errors.Is(err, ErrInvalidIdentifier) {
			t.Fatalf("classify %q: expected invalid identifier, got %v", in, err)
		}
		if !IsLocalValidation(err) {
			t.Fatalf("classify %q: expected local validation error", in)
		}
	}
}

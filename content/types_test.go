package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestType_With(t *testing.T) {
	tests := []struct {
		typ  Type
		tag  string
		want Type
	}{
		{Unstyled, HeaderOne, "header-one"},
		{Unstyled, Bold, "BOLD"},
		{"header-one", Bold, "header-one BOLD"},
		{"header-one BOLD", Red, "header-one BOLD RED"},
		{"header-one BOLD", Bold, "header-one BOLD"},
		{"BOLD header-one", Bold, "BOLD header-one"},
		{"unstyled BOLD", Underline, "BOLD UNDERLINE"},
		{"", Red, "RED"},
		{"BOLD", Unstyled, "unstyled"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+"+"+tt.tag, func(t *testing.T) {
			if got := tt.typ.With(tt.tag); got != tt.want {
				t.Errorf("With = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestType_Tags(t *testing.T) {
	got := Type("header-one  BOLD header-one RED").Tags()
	if diff := cmp.Diff([]string{"header-one", "BOLD", "RED"}, got); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
	if len(Type("").Tags()) != 0 {
		t.Error("empty type should have no tags")
	}
}

func TestType_HasAndIsUnstyled(t *testing.T) {
	typ := Type("header-one BOLD")
	if !typ.Has(Bold) || typ.Has(Red) {
		t.Errorf("Has gave wrong answer for %q", typ)
	}
	if typ.IsUnstyled() {
		t.Error("styled type reported unstyled")
	}
	if !Type(Unstyled).IsUnstyled() {
		t.Error("unstyled not reported unstyled")
	}
}

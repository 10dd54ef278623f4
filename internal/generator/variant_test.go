package generator

import (
	"errors"
	"testing"
)

func TestDefaultVariants(t *testing.T) {
	t.Parallel()

	want := []Flags{
		{Big: true, OnlyNumbers: false, SpecialChars: true},
		{Big: true, OnlyNumbers: false, SpecialChars: false},
		{Big: true, OnlyNumbers: true, SpecialChars: true},
		{Big: false, OnlyNumbers: false, SpecialChars: true},
		{Big: false, OnlyNumbers: false, SpecialChars: false},
		{Big: false, OnlyNumbers: true, SpecialChars: true},
	}

	got := DefaultVariants()
	if len(got) != len(want) {
		t.Fatalf("expected %d variants, got %d", len(want), len(got))
	}
	seen := make(map[string]bool)
	for i, v := range got {
		if v.Flags != want[i] {
			t.Errorf("variant %d (%s): flags = %+v, want %+v", i, v.Name, v.Flags, want[i])
		}
		if seen[v.Name] {
			t.Errorf("duplicate variant name %q", v.Name)
		}
		seen[v.Name] = true
	}
}

func TestParseVariant(t *testing.T) {
	t.Parallel()

	t.Run("known name", func(t *testing.T) {
		t.Parallel()
		v, err := ParseVariant(" Short-Digits ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !v.Flags.OnlyNumbers || v.Flags.Big {
			t.Errorf("unexpected flags: %+v", v.Flags)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		_, err := ParseVariant("medium")
		if !errors.Is(err, ErrUnknownVariant) {
			t.Errorf("expected ErrUnknownVariant, got %v", err)
		}
	})

	t.Run("empty list means defaults", func(t *testing.T) {
		t.Parallel()
		vs, err := ParseVariants(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vs) != 6 {
			t.Errorf("expected 6 variants, got %d", len(vs))
		}
	})

	t.Run("list keeps order", func(t *testing.T) {
		t.Parallel()
		vs, err := ParseVariants([]string{"short", "long"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if vs[0].Name != "short" || vs[1].Name != "long" {
			t.Errorf("unexpected order: %s, %s", vs[0].Name, vs[1].Name)
		}
	})
}

func TestFlagsString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flags Flags
		want  string
	}{
		{Flags{}, "plain"},
		{Flags{Big: true}, "big"},
		{Flags{Big: true, SpecialChars: true}, "big,special"},
		{Flags{OnlyNumbers: true, SpecialChars: true}, "numbers,special"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.flags, got, tt.want)
		}
	}
}

func TestDeriveVariants(t *testing.T) {
	t.Parallel()

	passwords := DeriveVariants("test", "unknown.unknown", DefaultVariants())
	want := []string{
		"2a9d1e0453d79086120bc2326d0e16b5fbcccb27b8d2@*_BQF",
		"2a9d1e0453d79086120bc2326d0e16b5fbcccb27b8d2943SOD",
		"42157304832151441341811194501091422181251204203391",
		"2a9d1e0453d7*_BQ",
		"2a9d1e0453943SOD",
		"4215730483215144",
	}
	for i, p := range passwords {
		if p.Value != want[i] {
			t.Errorf("%s: got %q, want %q", p.Variant.Name, p.Value, want[i])
		}
	}
}

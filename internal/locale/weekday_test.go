package locale

import (
	"errors"
	"testing"

	"schedrecur/internal/model"
)

func TestWeekdayNames(t *testing.T) {
	tests := []struct {
		locale string
		want   [7]string
	}{
		{"en_US.UTF-8", [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}},
		{"fi_FI.UTF-8", [7]string{"ma", "ti", "ke", "to", "pe", "la", "su"}},
		{"sv_SE.UTF-8", [7]string{"mån", "tis", "ons", "tors", "fre", "lör", "sön"}},
		{"sv_FI", [7]string{"mån", "tis", "ons", "tors", "fre", "lör", "sön"}},
		{"", [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			tag, err := ParsePOSIX(tt.locale)
			if err != nil {
				t.Fatalf("ParsePOSIX(%q) error: %v", tt.locale, err)
			}
			for i, want := range tt.want {
				got, err := Abbrev{}.NameOf(i, tag)
				if err != nil {
					t.Fatalf("NameOf(%d) error: %v", i, err)
				}
				if got != want {
					t.Errorf("NameOf(%d, %s) = %q, want %q", i, tag, got, want)
				}
			}
		})
	}
}

func TestUnsupportedLanguageFallsBackToEnglish(t *testing.T) {
	tag, err := ParsePOSIX("ja_JP.UTF-8")
	if err != nil {
		t.Fatalf("ParsePOSIX error: %v", err)
	}
	got, err := Abbrev{}.NameOf(0, tag)
	if err != nil {
		t.Fatalf("NameOf error: %v", err)
	}
	if got != "mon" {
		t.Fatalf("NameOf(0, ja) = %q, want mon", got)
	}
}

func TestInvalidWeekday(t *testing.T) {
	tag, _ := ParsePOSIX("en_US")
	for _, wd := range []int{-1, 7} {
		_, err := Abbrev{}.NameOf(wd, tag)
		if !errors.Is(err, model.ErrInvalidConfiguration) {
			t.Fatalf("NameOf(%d) err = %v, want ErrInvalidConfiguration", wd, err)
		}
	}
}

func TestInvalidLocale(t *testing.T) {
	if _, err := ParsePOSIX("!!_??"); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestUIStrings(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en_GB.UTF-8", "programs hidden"},
		{"fi_FI.UTF-8", "ohjelmaa piilotettu"},
		{"sv_SE", "program dolda"},
		{"ja_JP", "programs hidden"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			tag, err := ParsePOSIX(tt.locale)
			if err != nil {
				t.Fatalf("ParsePOSIX(%q) error: %v", tt.locale, err)
			}
			if got := UIStrings(tag).ProgramsHidden; got != tt.want {
				t.Fatalf("UIStrings(%s).ProgramsHidden = %q, want %q", tag, got, tt.want)
			}
		})
	}
}

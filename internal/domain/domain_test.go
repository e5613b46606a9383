package domain

import (
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"How to Prune Roses":  "how-to-prune-roses",
		"  C++ & Go: 2025! ":  "c-go-2025",
		"---":                 "",
		"Ünïcode stays loose": "n-code-stays-loose",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestTemplateWithDefaults(t *testing.T) {
	t.Parallel()

	tpl := Template{}.WithDefaults()

	if tpl.MinWords != 1000 || tpl.MaxWords != 2000 {
		t.Fatalf("unexpected word bounds: %d..%d", tpl.MinWords, tpl.MaxWords)
	}
	if tpl.SchemaType != DefaultSchemaType {
		t.Fatalf("unexpected schema type: %s", tpl.SchemaType)
	}
	if tpl.ImageProvider != ImageProviderNone || tpl.ImageCount != 3 {
		t.Fatalf("unexpected image defaults: %s/%d", tpl.ImageProvider, tpl.ImageCount)
	}
	if tpl.TitleFormula == "" || tpl.MetaDescFormula == "" {
		t.Fatalf("formulas must default")
	}

	custom := Template{MinWords: 500, SchemaType: "FAQPage"}.WithDefaults()
	if custom.MinWords != 500 || custom.SchemaType != "FAQPage" {
		t.Fatalf("explicit values must survive: %+v", custom)
	}
}

func TestTemplateWants(t *testing.T) {
	t.Parallel()

	if (Template{ImageProvider: ImageProviderNone, ImageCount: 3}).WantsImages() {
		t.Fatalf("provider none must disable images")
	}
	if !(Template{ImageProvider: "pexels", ImageCount: 1}).WantsImages() {
		t.Fatalf("configured provider must enable images")
	}
	if (Template{SchemaType: DefaultSchemaType}).WantsSchema() {
		t.Fatalf("default schema type needs no generation step")
	}
	if !(Template{SchemaType: "HowTo"}).WantsSchema() {
		t.Fatalf("custom schema type must trigger generation")
	}
}

func TestScheduleWithDefaults(t *testing.T) {
	t.Parallel()

	s := Schedule{}.WithDefaults()
	if s.Frequency != FrequencyDaily || s.Mode != ModeManual {
		t.Fatalf("unexpected cadence defaults: %s/%s", s.Frequency, s.Mode)
	}
	if s.Status != SchedulePaused || s.OutputStatus != OutputDraft {
		t.Fatalf("unexpected state defaults: %s/%s", s.Status, s.OutputStatus)
	}
	if s.ExecutionTime != "09:00" {
		t.Fatalf("unexpected execution time: %s", s.ExecutionTime)
	}

	bad := Schedule{Frequency: "fortnightly"}.WithDefaults()
	if bad.Frequency != FrequencyDaily {
		t.Fatalf("unknown frequency must normalize to daily, got %s", bad.Frequency)
	}
}

func TestFrequencyInterval(t *testing.T) {
	t.Parallel()

	cases := map[Frequency]time.Duration{
		FrequencyHourly:     time.Hour,
		FrequencyTwiceDaily: 12 * time.Hour,
		FrequencyDaily:      24 * time.Hour,
		FrequencyWeekly:     7 * 24 * time.Hour,
	}
	for freq, want := range cases {
		if got := freq.Interval(); got != want {
			t.Fatalf("%s: expected %v, got %v", freq, want, got)
		}
	}
}

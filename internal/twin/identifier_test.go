package twin

import (
	"regexp"
	"strings"
	"testing"
)

func TestEnsureNamespaced_AlreadyNamespaced(t *testing.T) {
	// Identifiers that already carry a namespace must pass through untouched,
	// even when the name part contains characters we would otherwise replace.
	ids := []string{
		"org.eclipse.ditto:Mixer",
		"factory:Mixer_0",
		"a:b",
		"org.eclipse.ditto:has spaces",
	}

	for _, id := range ids {
		if got := EnsureNamespaced(id, DefaultNamespace); got != id {
			t.Errorf("EnsureNamespaced(%q) = %q, want identity", id, got)
		}
	}
}

func TestEnsureNamespaced_AddsNamespace(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "Mixer", "org.eclipse.ditto:Mixer"},
		{"underscore kept", "Mixer_0", "org.eclipse.ditto:Mixer_0"},
		{"spaces to hyphens", "Water Tank 1", "org.eclipse.ditto:Water-Tank-1"},
		{"invalid chars to hyphens", "mixer#2@plant", "org.eclipse.ditto:mixer-2-plant"},
		{"dots kept", "plant.floor.mixer", "org.eclipse.ditto:plant.floor.mixer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnsureNamespaced(tt.raw, DefaultNamespace); got != tt.want {
				t.Errorf("EnsureNamespaced(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEnsureNamespaced_SuffixCharset(t *testing.T) {
	allowed := regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

	raws := []string{"Mixer 0", "a!b£c", "tank/level\\sensor", "ünïcode"}
	for _, raw := range raws {
		got := EnsureNamespaced(raw, "ns")
		if !strings.HasPrefix(got, "ns:") {
			t.Errorf("EnsureNamespaced(%q) = %q, want prefix %q", raw, got, "ns:")
			continue
		}
		suffix := strings.TrimPrefix(got, "ns:")
		if !allowed.MatchString(suffix) {
			t.Errorf("EnsureNamespaced(%q) suffix %q contains disallowed characters", raw, suffix)
		}
	}
}

func TestEnsureNamespaced_EmptyNamespaceFallsBack(t *testing.T) {
	got := EnsureNamespaced("Mixer", "")
	want := DefaultNamespace + ":Mixer"
	if got != want {
		t.Errorf("EnsureNamespaced with empty namespace = %q, want %q", got, want)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"org.eclipse.ditto:Mixer", "Mixer"},
		{"ns:a:b", "a:b"},
		{"no-namespace", "no-namespace"},
	}

	for _, tt := range tests {
		if got := Name(tt.id); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

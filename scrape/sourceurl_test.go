package scrape

import (
	"reflect"
	"testing"
)

func TestSourcePicker(t *testing.T) {
	tests := []struct {
		name          string
		offers        []string
		want          string
		wantDiscarded []string
	}{
		{
			name:   "single candidate wins",
			offers: []string{"https://github.com/a/mod"},
			want:   "https://github.com/a/mod",
		},
		{
			name:          "wiki link loses to a later plain link",
			offers:        []string{"https://github.com/a/mod/wiki", "https://github.com/b/mod"},
			want:          "https://github.com/b/mod",
			wantDiscarded: []string{"https://github.com/a/mod/wiki"},
		},
		{
			name:          "plain link beats a later wiki link",
			offers:        []string{"https://github.com/a/mod", "https://github.com/b/mod/wiki"},
			want:          "https://github.com/a/mod",
			wantDiscarded: []string{"https://github.com/b/mod/wiki"},
		},
		{
			name:          "placeholder loses to a later real link",
			offers:        []string{"https://github.com/pardeike/HarmonyRimWorld", "https://github.com/c/mod"},
			want:          "https://github.com/c/mod",
			wantDiscarded: []string{"https://github.com/pardeike/HarmonyRimWorld"},
		},
		{
			name:          "placeholder never displaces a real link",
			offers:        []string{"https://github.com/c/mod", "https://github.com/unlimitedhugs/lib"},
			want:          "https://github.com/c/mod",
			wantDiscarded: []string{"https://github.com/unlimitedhugs/lib"},
		},
		{
			name:   "duplicates vanish without a discard",
			offers: []string{"https://github.com/d/mod", "https://github.com/d/mod"},
			want:   "https://github.com/d/mod",
		},
		{
			name:   "case-insensitive duplicate",
			offers: []string{"https://github.com/d/mod", "https://github.com/D/Mod"},
			want:   "https://github.com/d/mod",
		},
		{
			name:          "plain tie-break keeps the earlier candidate",
			offers:        []string{"https://github.com/first/mod", "https://github.com/second/mod"},
			want:          "https://github.com/first/mod",
			wantDiscarded: []string{"https://github.com/second/mod"},
		},
		{
			name:          "two low-signal links keep the earlier one",
			offers:        []string{"https://github.com/a/mod/wiki", "https://github.com/b/mod/issues"},
			want:          "https://github.com/a/mod/wiki",
			wantDiscarded: []string{"https://github.com/b/mod/issues"},
		},
		{
			name:   "lone placeholder is dropped entirely",
			offers: []string{"https://github.com/pardeike/HarmonyRimWorld"},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newSourcePicker()
			for _, o := range tt.offers {
				p.offer(o)
			}
			got, discarded := p.final()
			if got != tt.want {
				t.Errorf("final() = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(discarded, tt.wantDiscarded) {
				t.Errorf("discarded = %v, want %v", discarded, tt.wantDiscarded)
			}
		})
	}
}

func TestIsLowSignal(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/a/mod", false},
		{"https://github.com/a/mod/issues/12", true},
		{"https://github.com/a/mod/wiki/Home", true},
		{"https://github.com/a/mod/blob/main/README.md", true},
		{"https://github.com/a/mod-translation", true},
		{"https://github.com/a/guidebook-mod", true},
		// host part never counts as a path segment
		{"https://wikigit.example.gitlab.com/a/mod", false},
	}
	for _, tt := range tests {
		if got := isLowSignal(tt.url); got != tt.want {
			t.Errorf("isLowSignal(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestRepositoryLinks(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "href attribute",
			line: `see <a href="https://github.com/a/mod">source</a>`,
			want: []string{"https://github.com/a/mod"},
		},
		{
			name: "bare link terminated by space",
			line: `source at https://github.com/a/mod and more`,
			want: []string{"https://github.com/a/mod"},
		},
		{
			name: "bbcode bracket terminator",
			line: `[url=https://gitlab.com/a/mod]source[/url]`,
			want: []string{"https://gitlab.com/a/mod"},
		},
		{
			name: "trailing slash and sentence dot trimmed",
			line: `https://github.com/a/mod/. end`,
			want: []string{"https://github.com/a/mod"},
		},
		{
			name: "multiple hosts in page order",
			line: `https://gitlab.com/x/one then https://github.com/y/two`,
			want: []string{"https://gitlab.com/x/one", "https://github.com/y/two"},
		},
		{
			name: "bare host without a path is ignored",
			line: `hosted on https://github.com/ somewhere`,
			want: nil,
		},
		{
			name: "no links",
			line: `just text`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repositoryLinks(tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("repositoryLinks(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

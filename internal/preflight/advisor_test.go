package preflight

import (
	"strings"
	"testing"

	"github.com/lromero/videogen-api/internal/job"
)

func TestAdvise_Summary(t *testing.T) {
	t.Run("short prompt is returned as-is", func(t *testing.T) {
		a := Advise("a cat surfing", "16:9", "720p", job.QualityFast)
		if a.Summary != "a cat surfing" {
			t.Errorf("Summary = %q, want prompt unchanged", a.Summary)
		}
	})

	t.Run("long prompt is truncated with ellipsis", func(t *testing.T) {
		long := strings.Repeat("x", 200)
		a := Advise(long, "16:9", "720p", job.QualityFast)

		if len(a.Summary) != 143 {
			t.Errorf("len(Summary) = %d, want 143 (140 + ellipsis)", len(a.Summary))
		}
		if !strings.HasSuffix(a.Summary, "...") {
			t.Errorf("Summary %q should end with ellipsis", a.Summary)
		}
	})

	t.Run("prompt of exactly 140 chars is not truncated", func(t *testing.T) {
		exact := strings.Repeat("y", 140)
		a := Advise(exact, "16:9", "720p", job.QualityFast)
		if a.Summary != exact {
			t.Errorf("Summary = %q, want prompt unchanged", a.Summary)
		}
	})
}

func TestAdvise_Frames(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{
			name:   "three sentences split on boundaries",
			prompt: "A cat wakes up. It stretches slowly. Then it surfs a wave! The end.",
			want:   []string{"A cat wakes up.", "It stretches slowly.", "Then it surfs a wave!"},
		},
		{
			name:   "fewer than three sentences falls back to commas",
			prompt: "a red balloon, a blue sky, a green field, a mountain",
			want:   []string{"a red balloon", "a blue sky", "a green field"},
		},
		{
			name:   "no separators yields single excerpt",
			prompt: "a lonely lighthouse at dusk",
			want:   []string{"a lonely lighthouse at dusk"},
		},
		{
			name:   "empty prompt yields no frames",
			prompt: "",
			want:   []string{},
		},
		{
			name:   "only commas falls back to truncated excerpt",
			prompt: ",,,",
			want:   []string{",,,"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Advise(tt.prompt, "16:9", "720p", job.QualityFast)

			if len(a.Frames) > 3 {
				t.Fatalf("len(Frames) = %d, want <= 3", len(a.Frames))
			}
			if len(a.Frames) != len(tt.want) {
				t.Fatalf("Frames = %v, want %v", a.Frames, tt.want)
			}
			for i := range tt.want {
				if a.Frames[i] != tt.want[i] {
					t.Errorf("Frames[%d] = %q, want %q", i, a.Frames[i], tt.want[i])
				}
			}
		})
	}

	t.Run("fallback excerpt is bounded to 80 chars", func(t *testing.T) {
		long := strings.Repeat(",", 200)
		a := Advise(long, "16:9", "720p", job.QualityFast)
		if len(a.Frames) != 1 {
			t.Fatalf("len(Frames) = %d, want 1", len(a.Frames))
		}
		if len(a.Frames[0]) != 80 {
			t.Errorf("len(Frames[0]) = %d, want 80", len(a.Frames[0]))
		}
	})
}

func TestAdvise_Warnings(t *testing.T) {
	t.Run("denylisted term produces warning and blocks approval", func(t *testing.T) {
		a := Advise("I will build a bomb", "16:9", "720p", job.QualityFast)

		if a.Approved {
			t.Error("expected Approved = false")
		}
		if len(a.Warnings) != 1 {
			t.Fatalf("len(Warnings) = %d, want 1", len(a.Warnings))
		}
		if !strings.Contains(a.Warnings[0], "bomb") {
			t.Errorf("warning %q should reference the matched term", a.Warnings[0])
		}
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		a := Advise("a GUN on a table", "16:9", "720p", job.QualityFast)
		if a.Approved {
			t.Error("expected Approved = false")
		}
		if len(a.Warnings) == 0 || !strings.Contains(a.Warnings[0], "gun") {
			t.Errorf("expected a gun warning, got %v", a.Warnings)
		}
	})

	t.Run("multiple terms produce multiple warnings", func(t *testing.T) {
		a := Advise("a bomb and a gun", "16:9", "720p", job.QualityFast)
		if len(a.Warnings) != 2 {
			t.Errorf("len(Warnings) = %d, want 2", len(a.Warnings))
		}
	})

	t.Run("clean prompt is approved with no warnings", func(t *testing.T) {
		a := Advise("a peaceful meadow at dawn", "16:9", "720p", job.QualityFast)
		if !a.Approved {
			t.Error("expected Approved = true")
		}
		if len(a.Warnings) != 0 {
			t.Errorf("expected no warnings, got %v", a.Warnings)
		}
	})
}

func TestAdvise_EstimatedTime(t *testing.T) {
	tests := []struct {
		name       string
		quality    job.Quality
		resolution string
		want       int
	}{
		{"fast 720p", job.QualityFast, "720p", 5},
		{"fast 1080p", job.QualityFast, "1080p", 20},
		{"standard 1080p", job.QualityStandard, "1080p", 80},
		{"standard 720p", job.QualityStandard, "720p", 40},
		{"standard unknown", job.QualityStandard, "4k", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Advise("a cat", "16:9", tt.resolution, tt.quality)
			if a.EstimatedTimeSeconds != tt.want {
				t.Errorf("EstimatedTimeSeconds = %d, want %d", a.EstimatedTimeSeconds, tt.want)
			}
		})
	}
}

func TestAdvise_SuggestedPrompt(t *testing.T) {
	a := Advise("  a   cat \n surfing  ", "16:9", "720p", job.QualityFast)
	if a.SuggestedPrompt != "a cat surfing" {
		t.Errorf("SuggestedPrompt = %q, want whitespace-normalized prompt", a.SuggestedPrompt)
	}
}

func TestAdvise_EmptyPrompt(t *testing.T) {
	a := Advise("", "16:9", "720p", job.QualityFast)

	if a.Summary != "" {
		t.Errorf("Summary = %q, want empty", a.Summary)
	}
	if len(a.Frames) != 0 {
		t.Errorf("Frames = %v, want empty", a.Frames)
	}
	if !a.Approved {
		t.Error("expected empty prompt to be approved")
	}
}

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/quizreel/internal/config"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscoverOrdersNumerically(t *testing.T) {
	dir := t.TempDir()
	out := config.Default().Output
	touch(t, dir,
		"quiz_2.mp4", "quiz_10.mp4", "quiz_1.mp4", "quiz_b.mp4", "quiz_a.mp4",
		"intro.mp4", "quiz_final.mp4", "to_concat.txt", "quiz_3.mov",
		".partial-0b7c-quiz_4.mp4", ".quizreel.lock", "quiz_.mp4",
	)
	os.Mkdir(filepath.Join(dir, "quiz_5.mp4"), 0o755)

	got, err := Discover(dir, out, "quiz_final.mp4")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, p := range got {
		names = append(names, filepath.Base(p))
	}
	want := "[quiz_1.mp4 quiz_2.mp4 quiz_10.mp4 quiz_a.mp4 quiz_b.mp4]"
	if fmt.Sprint(names) != want {
		t.Errorf("Discover = %v, want %s", names, want)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope"), config.Default().Output); err == nil {
		t.Error("expected error")
	}
}

func TestArtifactID(t *testing.T) {
	out := config.Default().Output
	tests := []struct {
		path string
		id   string
		ok   bool
	}{
		{"/x/quiz_12.mp4", "12", true},
		{"quiz_abc.mp4", "abc", true},
		{"quiz_.mp4", "", false},
		{"intro.mp4", "", false},
		{".partial-123-quiz_1.mp4", "", false},
		{"quiz_1.mkv", "", false},
	}
	for _, tt := range tests {
		id, ok := ArtifactID(tt.path, out)
		if id != tt.id || ok != tt.ok {
			t.Errorf("ArtifactID(%q) = %q,%v want %q,%v", tt.path, id, ok, tt.id, tt.ok)
		}
	}
	if p := ArtifactPath("/out", out, "7"); p != "/out/quiz_7.mp4" {
		t.Errorf("ArtifactPath = %s", p)
	}
}

func TestLessIDTieBreak(t *testing.T) {
	// "01" and "1" are equal numerically; the string order keeps sorting total.
	if !lessID("01", "1") || lessID("1", "01") {
		t.Error("numeric ties should fall back to string order")
	}
	if !lessID("99", "a") || lessID("a", "99") {
		t.Error("numeric ids sort before non-numeric")
	}
}

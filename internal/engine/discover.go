package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ivlev/quizreel/internal/config"
	"github.com/ivlev/quizreel/internal/video"
)

// ArtifactPath is the deterministic output file of question id.
func ArtifactPath(dir string, out config.Output, id string) string {
	return filepath.Join(dir, out.Prefix+id+out.Ext)
}

// ArtifactID extracts the question id from an artifact file name.
func ArtifactID(path string, out config.Output) (string, bool) {
	name := filepath.Base(path)
	if video.IsPartial(name) || !strings.HasPrefix(name, out.Prefix) || !strings.HasSuffix(name, out.Ext) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, out.Prefix), out.Ext)
	if id == "" {
		return "", false
	}
	return id, true
}

// Discover lists the question artifacts already in dir, sorted by id.
// Unfinished encodes, the intro and any name in exclude (the final output)
// are ignored.
func Discover(dir string, out config.Output, exclude ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	skip := map[string]bool{out.IntroName: true}
	for _, e := range exclude {
		skip[filepath.Base(e)] = true
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || skip[e.Name()] {
			continue
		}
		if _, ok := ArtifactID(e.Name(), out); ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	SortArtifacts(paths, out)
	return paths, nil
}

// SortArtifacts orders paths by numeric question id; non-numeric ids come
// after all numeric ones, in lexicographic order.
func SortArtifacts(paths []string, out config.Output) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, _ := ArtifactID(paths[i], out)
		b, _ := ArtifactID(paths[j], out)
		return lessID(a, b)
	})
}

func lessID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// Artifacts returns the sorted paths of results whose artifact exists.
func Artifacts(results []Result, out config.Output) []string {
	var paths []string
	for _, r := range results {
		if r.OK() {
			paths = append(paths, r.Path)
		}
	}
	SortArtifacts(paths, out)
	return paths
}

package video

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/quizreel/internal/config"
)

func testParams() config.EncodeParams {
	return config.Default().EncodeParams(14)
}

func argValue(args []string, flag string) (string, bool) {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1], true
		}
	}
	return "", false
}

func TestBuildArgsQuestionClip(t *testing.T) {
	spec := StreamSpec{
		Params: testParams(),
		Audio: []AudioTrack{
			{Path: "tick.mp3", Offset: 1, Trim: 13},
			{Path: "ding.mp3", Offset: 11, Volume: 0.05},
		},
	}
	args := BuildArgs(spec, "out/quiz_1.mp4")
	joined := strings.Join(args, " ")

	for _, want := range []string{"-f rawvideo", "-pix_fmt rgba", "-s 1920x1080", "-i pipe:", "-i tick.mp3", "-i ding.mp3", "-y", "out/quiz_1.mp4"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q:\n%s", want, joined)
		}
	}

	graph, ok := argValue(args, "-filter_complex")
	if !ok {
		t.Fatalf("no filter graph in %s", joined)
	}
	for _, want := range []string{"atrim=end=13.000", "volume=0.05", "1000|1000", "11000|11000", "amix", "inputs=2", "apad"} {
		if !strings.Contains(graph, want) {
			t.Errorf("filter graph missing %q: %s", want, graph)
		}
	}

	if v, _ := argValue(args, "-t"); v != "14.000" {
		t.Errorf("-t = %q, want 14.000", v)
	}
	if v, _ := argValue(args, "-c:v"); v != "libx264" {
		t.Errorf("-c:v = %q", v)
	}
	if v, _ := argValue(args, "-preset"); v != "veryfast" {
		t.Errorf("-preset = %q", v)
	}
	if v, _ := argValue(args, "-c:a"); v != "aac" {
		t.Errorf("-c:a = %q", v)
	}
}

func TestBuildArgsReadsOpenFilesFromInheritedDescriptors(t *testing.T) {
	dir := t.TempDir()
	open := func(name string) *os.File {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("ID3"), 0o644); err != nil {
			t.Fatal(err)
		}
		f, err := os.Open(p)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { f.Close() })
		return f
	}
	tick, ding := open("tick.mp3"), open("ding.mp3")

	spec := StreamSpec{
		Params: testParams(),
		Audio: []AudioTrack{
			{Path: tick.Name(), File: tick, Offset: 1, Trim: 13},
			{Path: "extra.mp3", Offset: 5},
			{Path: ding.Name(), File: ding, Offset: 11, Volume: 0.05},
		},
	}
	joined := strings.Join(BuildArgs(spec, "quiz_1.mp4"), " ")
	for _, want := range []string{"-i pipe:3", "-i extra.mp3", "-i pipe:4"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, tick.Name()) || strings.Contains(joined, ding.Name()) {
		t.Errorf("open tracks should not be reopened by path:\n%s", joined)
	}

	files := InheritedFiles(spec)
	if len(files) != 2 || files[0] != tick || files[1] != ding {
		t.Errorf("inherited files = %v, want tick then ding", files)
	}
}

func TestBuildArgsSilentClip(t *testing.T) {
	args := BuildArgs(StreamSpec{Params: testParams()}, "intro.mp4")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-f lavfi") || !strings.Contains(joined, "anullsrc=r=44100:cl=stereo") {
		t.Errorf("silent clip should use anullsrc: %s", joined)
	}
	if strings.Contains(joined, "amix") {
		t.Errorf("no mix expected: %s", joined)
	}
}

func TestBuildArgsVideoToolboxHasNoPreset(t *testing.T) {
	p := testParams()
	p.Encoder = "h264_videotoolbox"
	args := BuildArgs(StreamSpec{Params: p}, "x.mp4")
	if _, ok := argValue(args, "-preset"); ok {
		t.Errorf("videotoolbox should not get -preset: %v", args)
	}
}

func TestStreamSpecFrameCount(t *testing.T) {
	s := StreamSpec{Params: config.EncodeParams{FPS: 30, Duration: 14}}
	if got := s.FrameCount(); got != 420 {
		t.Errorf("FrameCount = %d, want 420", got)
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 1, G: 2, B: 3, A: 4})

	var buf bytes.Buffer
	if err := WriteRawRGBA(&buf, img); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 16 || !bytes.Equal(buf.Bytes()[12:], []byte{1, 2, 3, 4}) {
		t.Errorf("unexpected bytes %v", buf.Bytes())
	}

	// Sub-images are repacked without stride padding.
	sub := img.SubImage(image.Rect(1, 1, 2, 2))
	buf.Reset()
	if err := WriteRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2, 3, 4}) {
		t.Errorf("sub-image bytes %v", buf.Bytes())
	}
}

func TestWriteConcatListEscapesQuotes(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "to_concat.txt")
	clips := []string{filepath.Join(dir, "intro.mp4"), filepath.Join(dir, "it's", "quiz_1.mp4")}

	if err := WriteConcatList(manifest, clips); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	want := "file '" + clips[0] + "'\n" +
		"file '" + filepath.Join(dir, `it'\''s`, "quiz_1.mp4") + "'\n"
	if string(data) != want {
		t.Errorf("manifest:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriteConcatListAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "m.txt")
	if err := WriteConcatList(manifest, []string{"rel/quiz_2.mp4"}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(manifest)
	line := strings.TrimSuffix(strings.TrimPrefix(string(data), "file '"), "'\n")
	if !filepath.IsAbs(line) {
		t.Errorf("path not absolute: %q", line)
	}
}

func TestConcatArgs(t *testing.T) {
	args := ConcatArgs("/out/to_concat.txt", "/out/final.mp4")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-f concat", "-safe 0", "-i /out/to_concat.txt", "-c copy", "/out/final.mp4", "-y"} {
		if !strings.Contains(joined, want) {
			t.Errorf("concat args missing %q: %s", want, joined)
		}
	}
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("12.345000\n")
	if err != nil || d != 12.345 {
		t.Errorf("parseDuration = %v, %v", d, err)
	}
	if _, err := parseDuration("N/A"); err == nil {
		t.Error("expected error for N/A")
	}
}

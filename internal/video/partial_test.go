package video

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fileEncoder struct {
	fail    error
	written string
}

func (f *fileEncoder) EncodeStream(_ context.Context, _ StreamSpec, outPath string, write func(io.Writer) error) error {
	f.written = outPath
	file, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := write(file); err != nil {
		return err
	}
	return f.fail
}

func TestPartialPath(t *testing.T) {
	p := PartialPath("/out/quiz_7.mp4")
	if filepath.Dir(p) != "/out" {
		t.Errorf("partial not next to final: %s", p)
	}
	if !IsPartial(p) || !strings.HasSuffix(p, "-quiz_7.mp4") {
		t.Errorf("unexpected partial name %s", p)
	}
	if p == PartialPath("/out/quiz_7.mp4") {
		t.Error("partial names must be unique")
	}
	if IsPartial("/out/quiz_7.mp4") {
		t.Error("final name reported as partial")
	}
}

func TestEncodeToFileCommits(t *testing.T) {
	final := filepath.Join(t.TempDir(), "quiz_1.mp4")
	enc := &fileEncoder{}
	err := EncodeToFile(context.Background(), enc, StreamSpec{}, final, func(w io.Writer) error {
		_, err := io.WriteString(w, "data")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if enc.written == final || !IsPartial(enc.written) {
		t.Errorf("encoder wrote %s directly", enc.written)
	}
	if b, err := os.ReadFile(final); err != nil || string(b) != "data" {
		t.Errorf("final = %q, %v", b, err)
	}
	if _, err := os.Stat(enc.written); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
}

func TestEncodeToFileFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "quiz_1.mp4")
	boom := errors.New("boom")
	err := EncodeToFile(context.Background(), &fileEncoder{fail: boom}, StreamSpec{}, final, func(io.Writer) error { return nil })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir should be empty, has %d entries", len(entries))
	}
}

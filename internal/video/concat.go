package video

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// WriteConcatList writes an ffmpeg concat demuxer manifest, one
// `file '<abs path>'` line per clip in the given order.
func WriteConcatList(path string, clips []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, c := range clips {
		absPath, err := filepath.Abs(c)
		if err != nil {
			f.Close()
			return fmt.Errorf("resolve %s: %w", c, err)
		}
		fmt.Fprintf(w, "file '%s'\n", quoteConcatPath(absPath))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	return f.Close()
}

// Кавычка в пути: закрыть строку, экранировать, открыть снова.
func quoteConcatPath(p string) string {
	return strings.ReplaceAll(p, `'`, `'\''`)
}

// ConcatArgs is the argument list for a lossless stream-copy join.
func ConcatArgs(manifest, finalPath string) []string {
	return ffmpeg.Input(manifest, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(finalPath, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		GetArgs()
}

// Concatenate joins the clips listed in manifest into finalPath without
// re-encoding. All clips must share codec parameters.
func (e *FFmpegEncoder) Concatenate(ctx context.Context, manifest, finalPath string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath(), ConcatArgs(manifest, finalPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg concat error: %w, output: %s", err, logTail(string(out), 20))
	}
	return nil
}

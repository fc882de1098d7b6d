package video

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const partialPrefix = ".partial-"

// PartialPath returns a hidden, unique sibling of final to encode into.
// The extension is kept so ffmpeg still picks the right muxer.
func PartialPath(final string) string {
	dir, base := filepath.Split(final)
	return filepath.Join(dir, partialPrefix+uuid.NewString()+"-"+base)
}

// IsPartial reports whether a file name belongs to an unfinished encode.
func IsPartial(name string) bool {
	return strings.HasPrefix(filepath.Base(name), partialPrefix)
}

// EncodeToFile encodes into a partial file and renames it to final only
// after ffmpeg succeeded, so final never exists half-written.
func EncodeToFile(ctx context.Context, enc Encoder, spec StreamSpec, final string, write func(io.Writer) error) error {
	tmp := PartialPath(final)
	if err := enc.EncodeStream(ctx, spec, tmp, write); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit %s: %w", final, err)
	}
	return nil
}

package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/quizreel/internal/config"
)

// Encoder turns a stream of raw RGBA frames plus audio tracks into a file.
type Encoder interface {
	EncodeStream(ctx context.Context, spec StreamSpec, outPath string, write func(io.Writer) error) error
}

// Prober reports the duration of a media file in seconds.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// AudioTrack is one audio input placed on the clip timeline.
// Offset delays the track start, Trim cuts the source after that many
// seconds (0 keeps it whole), Volume scales it (0 means 1.0).
// When File is set ffmpeg inherits that descriptor and reads the track from
// it (pipe:N) instead of opening Path again.
type AudioTrack struct {
	Path   string
	File   *os.File
	Offset float64
	Trim   float64
	Volume float64
}

// StreamSpec describes one encode: the video canvas and the audio mix.
// With no tracks a silent stereo track is generated so that every clip has
// the same stream layout and can be concatenated with -c copy.
type StreamSpec struct {
	Params config.EncodeParams
	Audio  []AudioTrack
}

// FrameCount is the number of frames the writer must produce.
func (s StreamSpec) FrameCount() int {
	return int(float64(s.Params.FPS)*s.Params.Duration + 0.5)
}

type FFmpegEncoder struct {
	FFmpeg  string
	FFprobe string
}

func NewFFmpegEncoder(tools config.Tools) *FFmpegEncoder {
	return &FFmpegEncoder{FFmpeg: tools.FFmpeg, FFprobe: tools.FFprobe}
}

func (e *FFmpegEncoder) ffmpegPath() string {
	if e.FFmpeg == "" {
		return "ffmpeg"
	}
	return e.FFmpeg
}

func (e *FFmpegEncoder) ffprobePath() string {
	if e.FFprobe == "" {
		return "ffprobe"
	}
	return e.FFprobe
}

// EncodeStream starts ffmpeg reading rawvideo from stdin, lets write push
// the frames, and waits for the encode to finish.
func (e *FFmpegEncoder) EncodeStream(ctx context.Context, spec StreamSpec, outPath string, write func(io.Writer) error) error {
	args := BuildArgs(spec, outPath)

	cmd := exec.CommandContext(ctx, e.ffmpegPath(), args...)
	cmd.ExtraFiles = InheritedFiles(spec)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	writeErr := write(stdin)
	stdin.Close()

	// Ошибка ffmpeg важнее: при его падении запись получает только EPIPE.
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, logTail(out.String(), 20))
	}
	if writeErr != nil {
		return fmt.Errorf("write raw error: %w", writeErr)
	}
	return nil
}

// ExtraFiles start after stdin, stdout and stderr.
const firstInheritedFD = 3

// InheritedFiles lists the open track files in the order BuildArgs numbers
// them; it is the ExtraFiles of the ffmpeg process.
func InheritedFiles(spec StreamSpec) []*os.File {
	var files []*os.File
	for _, t := range spec.Audio {
		if t.File != nil {
			files = append(files, t.File)
		}
	}
	return files
}

// BuildArgs returns the ffmpeg argument list for spec. The video comes from
// stdin; every audio track is trimmed, scaled and delayed, then mixed and
// padded to the clip length.
func BuildArgs(spec StreamSpec, outPath string) []string {
	p := spec.Params

	frames := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", p.Width, p.Height),
		"framerate": p.FPS,
	})

	var tracks []*ffmpeg.Stream
	fd := firstInheritedFD
	for _, t := range spec.Audio {
		input := t.Path
		if t.File != nil {
			input = fmt.Sprintf("pipe:%d", fd)
			fd++
		}
		s := ffmpeg.Input(input).Audio()
		if t.Trim > 0 {
			s = s.Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"end": seconds(t.Trim)})
		}
		if t.Volume > 0 && t.Volume != 1 {
			s = s.Filter("volume", ffmpeg.Args{strconv.FormatFloat(t.Volume, 'f', -1, 64)})
		}
		if ms := int(t.Offset*1000 + 0.5); ms > 0 {
			s = s.Filter("adelay", ffmpeg.Args{fmt.Sprintf("%d|%d", ms, ms)})
		}
		tracks = append(tracks, s)
	}

	sampleRate := p.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	var audio *ffmpeg.Stream
	switch len(tracks) {
	case 0:
		audio = ffmpeg.Input(fmt.Sprintf("anullsrc=r=%d:cl=stereo", sampleRate), ffmpeg.KwArgs{"f": "lavfi"})
	case 1:
		audio = tracks[0].Filter("apad", ffmpeg.Args{})
	default:
		audio = ffmpeg.Filter(tracks, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
			"inputs":    len(tracks),
			"duration":  "longest",
			"normalize": 0,
		}).Filter("apad", ffmpeg.Args{})
	}

	kw := ffmpeg.KwArgs{
		"t":       seconds(p.Duration),
		"r":       p.FPS,
		"pix_fmt": "yuv420p",
		"c:v":     p.Encoder,
		"b:v":     p.Bitrate,
		"c:a":     "aac",
		"b:a":     p.AudioBitrate,
		"ar":      sampleRate,
		"ac":      2,
	}
	// Качество в зависимости от энкодера
	switch p.Encoder {
	case "libx264":
		kw["preset"] = p.Preset
	case "h264_videotoolbox":
		// VideoToolbox не знает -preset.
	case "h264_nvenc":
		kw["preset"] = "p4"
	}

	return ffmpeg.Output([]*ffmpeg.Stream{frames, audio}, outPath, kw).
		OverWriteOutput().
		GetArgs()
}

// WriteRawRGBA writes img as tightly packed RGBA rows.
func WriteRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	// Проверяем, является ли изображение уже RGBA и имеет ли стандартный шаг (stride)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func logTail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

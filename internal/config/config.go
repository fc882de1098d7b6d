package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Config holds every visual, timing and encoding constant of a run.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
	FPS    int `yaml:"fps" toml:"fps"`

	// Backdrop is an optional PNG/JPEG drawn over the background colour.
	Backdrop string   `yaml:"backdrop" toml:"backdrop"`
	Palette  Palette  `yaml:"palette" toml:"palette"`
	Fonts    Fonts    `yaml:"fonts" toml:"fonts"`
	Layout   Layout   `yaml:"layout" toml:"layout"`
	Timing   Timing   `yaml:"timing" toml:"timing"`
	Audio    Audio    `yaml:"audio" toml:"audio"`
	Encoding Encoding `yaml:"encoding" toml:"encoding"`
	Intro    Intro    `yaml:"intro" toml:"intro"`
	Output   Output   `yaml:"output" toml:"output"`
	Tools    Tools    `yaml:"tools" toml:"tools"`
	Thermal  Thermal  `yaml:"thermal" toml:"thermal"`
}

type Palette struct {
	Background Color `yaml:"bg" toml:"bg"`
	Question   Color `yaml:"q_text" toml:"q_text"`
	Option     Color `yaml:"opt" toml:"opt"`
	Correct    Color `yaml:"correct" toml:"correct"`
	BarBG      Color `yaml:"bar_bg" toml:"bar_bg"`
	BarFG      Color `yaml:"bar_fg" toml:"bar_fg"`
}

type Fonts struct {
	Regular string `yaml:"regular" toml:"regular"`
	Bold    string `yaml:"bold" toml:"bold"`
}

type Layout struct {
	QuestionX        int     `yaml:"question_x" toml:"question_x"`
	QuestionTop      int     `yaml:"question_top" toml:"question_top"`
	QuestionWidth    int     `yaml:"question_width" toml:"question_width"`
	QuestionFontSize float64 `yaml:"question_font_size" toml:"question_font_size"`
	OptionFontSize   float64 `yaml:"option_font_size" toml:"option_font_size"`
	CorrectFontSize  float64 `yaml:"correct_font_size" toml:"correct_font_size"`
	OptionColumns    []int   `yaml:"option_columns" toml:"option_columns"`
	OptionTopGap     int     `yaml:"option_top_gap" toml:"option_top_gap"`
	OptionRowGap     int     `yaml:"option_row_gap" toml:"option_row_gap"`
	OptionWrapChars  int     `yaml:"option_wrap_chars" toml:"option_wrap_chars"`
	MaxOptions       int     `yaml:"max_options" toml:"max_options"`
	LineSpacing      int     `yaml:"line_spacing" toml:"line_spacing"`
	SlideOffset      float64 `yaml:"slide_offset" toml:"slide_offset"`
	BarHeight        int     `yaml:"bar_height" toml:"bar_height"`
}

// Timing values are in seconds.
type Timing struct {
	LeadIn     float64 `yaml:"lead_in" toml:"lead_in"`
	Guess      float64 `yaml:"guess" toml:"guess"`
	Reveal     float64 `yaml:"reveal" toml:"reveal"`
	SlideDelay float64 `yaml:"slide_delay" toml:"slide_delay"`
	SlideDur   float64 `yaml:"slide_duration" toml:"slide_duration"`
}

type Audio struct {
	Tick       string  `yaml:"tick" toml:"tick"`
	Ding       string  `yaml:"ding" toml:"ding"`
	DingVolume float64 `yaml:"ding_volume" toml:"ding_volume"`
}

type Encoding struct {
	// Encoder is an ffmpeg video encoder name or "auto".
	Encoder      string `yaml:"encoder" toml:"encoder"`
	Preset       string `yaml:"preset" toml:"preset"`
	Bitrate      string `yaml:"bitrate" toml:"bitrate"`
	AudioBitrate string `yaml:"audio_bitrate" toml:"audio_bitrate"`
	SampleRate   int    `yaml:"sample_rate" toml:"sample_rate"`
}

type Intro struct {
	Seconds  int     `yaml:"seconds" toml:"seconds"`
	FontSize float64 `yaml:"font_size" toml:"font_size"`
	QRURL    string  `yaml:"qr_url" toml:"qr_url"`
	QRSize   int     `yaml:"qr_size" toml:"qr_size"`
}

type Output struct {
	Prefix       string `yaml:"prefix" toml:"prefix"`
	Ext          string `yaml:"ext" toml:"ext"`
	IntroName    string `yaml:"intro_name" toml:"intro_name"`
	ManifestName string `yaml:"manifest_name" toml:"manifest_name"`
}

type Tools struct {
	FFmpeg  string `yaml:"ffmpeg" toml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe" toml:"ffprobe"`
}

// Thermal controls the cooling pauses inserted between batches.
type Thermal struct {
	MaxTempC      float64 `yaml:"max_temp_c" toml:"max_temp_c"`
	MaxLoad       float64 `yaml:"max_load_per_cpu" toml:"max_load_per_cpu"`
	CoolSeconds   float64 `yaml:"cool_seconds" toml:"cool_seconds"`
	MaxCoolRounds int     `yaml:"max_cool_rounds" toml:"max_cool_rounds"`
	PauseSeconds  float64 `yaml:"pause_seconds" toml:"pause_seconds"`
}

// EncodeParams describes one encoded clip.
type EncodeParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	Encoder       string
	Preset        string
	Bitrate       string
	AudioBitrate  string
	SampleRate    int
}

// Default returns the stock quiz template: a 1080p dark theme with a
// ten second guess phase and a three second reveal.
func Default() *Config {
	return DefaultWithAssets("assets")
}

func DefaultWithAssets(assets string) *Config {
	fonts := filepath.Join(assets, "fonts", "Noto_Sans_Devanagari", "static")
	audio := filepath.Join(assets, "audio")
	return &Config{
		Width:  1920,
		Height: 1080,
		FPS:    30,
		Palette: Palette{
			Background: RGB(24, 24, 48),
			Question:   RGB(204, 204, 204),
			Option:     RGB(170, 170, 170),
			Correct:    RGB(76, 175, 80),
			BarBG:      RGB(68, 68, 102),
			BarFG:      RGB(255, 255, 0),
		},
		Fonts: Fonts{
			Regular: filepath.Join(fonts, "NotoSansDevanagari-Regular.ttf"),
			Bold:    filepath.Join(fonts, "NotoSansDevanagari-ExtraBold.ttf"),
		},
		Layout: Layout{
			QuestionX:        150,
			QuestionTop:      150,
			QuestionWidth:    1600,
			QuestionFontSize: 70,
			OptionFontSize:   50,
			CorrectFontSize:  60,
			OptionColumns:    []int{150, 1000},
			OptionTopGap:     200,
			OptionRowGap:     150,
			OptionWrapChars:  30,
			MaxOptions:       8,
			LineSpacing:      4,
			SlideOffset:      200,
			BarHeight:        10,
		},
		Timing: Timing{
			LeadIn:     1,
			Guess:      10,
			Reveal:     3,
			SlideDelay: 0.15,
			SlideDur:   0.25,
		},
		Audio: Audio{
			Tick:       filepath.Join(audio, "tick_10seconds.mp3"),
			Ding:       filepath.Join(audio, "ding.mp3"),
			DingVolume: 0.05,
		},
		Encoding: Encoding{
			Encoder:      "libx264",
			Preset:       "veryfast",
			Bitrate:      "2000k",
			AudioBitrate: "192k",
			SampleRate:   44100,
		},
		Intro: Intro{
			Seconds:  10,
			FontSize: 200,
			QRSize:   256,
		},
		Output: Output{
			Prefix:       "quiz_",
			Ext:          ".mp4",
			IntroName:    "intro.mp4",
			ManifestName: "to_concat.txt",
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Thermal: Thermal{
			MaxTempC:      85,
			MaxLoad:       1.5,
			CoolSeconds:   30,
			MaxCoolRounds: 4,
			PauseSeconds:  60,
		},
	}
}

// TotalDuration is lead-in + guess + reveal.
func (c *Config) TotalDuration() float64 {
	return c.Timing.LeadIn + c.Timing.Guess + c.Timing.Reveal
}

// EncodeParams returns the encoder settings for a clip of the given length.
func (c *Config) EncodeParams(duration float64) EncodeParams {
	return EncodeParams{
		Width:        c.Width,
		Height:       c.Height,
		FPS:          c.FPS,
		Duration:     duration,
		Encoder:      c.Encoding.Encoder,
		Preset:       c.Encoding.Preset,
		Bitrate:      c.Encoding.Bitrate,
		AudioBitrate: c.Encoding.AudioBitrate,
		SampleRate:   c.Encoding.SampleRate,
	}
}

// Validate reports every setting that would make rendering impossible.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		errs = append(errs, fmt.Errorf("canvas size must be even for yuv420p, got %dx%d", c.Width, c.Height))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.Timing.Guess <= 0 || c.Timing.Reveal <= 0 {
		errs = append(errs, fmt.Errorf("guess and reveal durations must be positive"))
	}
	if c.Timing.LeadIn < 0 {
		errs = append(errs, fmt.Errorf("lead-in must not be negative"))
	}
	if c.Timing.SlideDur <= 0 || c.Timing.SlideDelay < 0 {
		errs = append(errs, fmt.Errorf("slide duration must be positive and slide delay not negative"))
	}
	if len(c.Layout.OptionColumns) == 0 {
		errs = append(errs, fmt.Errorf("at least one option column is required"))
	}
	if c.Layout.MaxOptions <= 0 {
		errs = append(errs, fmt.Errorf("max_options must be positive"))
	}
	if c.Layout.QuestionFontSize <= 0 || c.Layout.OptionFontSize <= 0 || c.Layout.CorrectFontSize <= 0 {
		errs = append(errs, fmt.Errorf("font sizes must be positive"))
	}
	if c.Fonts.Regular == "" || c.Fonts.Bold == "" {
		errs = append(errs, fmt.Errorf("regular and bold font paths are required"))
	}
	if c.Output.Prefix == "" || c.Output.Ext == "" {
		errs = append(errs, fmt.Errorf("artifact prefix and extension are required"))
	}
	if c.Intro.Seconds <= 0 {
		errs = append(errs, fmt.Errorf("intro seconds must be positive"))
	}
	return errors.Join(errs...)
}

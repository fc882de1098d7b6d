package system

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// InitResourceLimits поднимает лимит открытых файлов: каждый воркер держит
// пайпы ffmpeg и файлы шрифтов/аудио.
func InitResourceLimits() {
	var rLimit unix.Rlimit
	err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = unix.Setrlimit(unix.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// LowerPriority sets the niceness of the whole process. Child ffmpeg
// processes inherit it.
func LowerPriority(nice int) error {
	if nice <= 0 {
		return nil
	}
	if nice > 19 {
		nice = 19
	}
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, nice); err != nil {
		return fmt.Errorf("setpriority %d: %w", nice, err)
	}
	fmt.Printf("[*] Приоритет процесса понижен (nice %d)\n", nice)
	return nil
}

// Приоритеты:
// 1. MacOS (VideoToolbox)
// 2. NVIDIA (NVENC)
// 3. Software (libx264)
var hardwareEncoders = []string{"h264_videotoolbox", "h264_nvenc"}

// GetBestH264Encoder asks ffmpeg which encoders it was built with and
// returns the first hardware H.264 encoder, falling back to libx264.
func GetBestH264Encoder(ctx context.Context, ffmpegPath string) string {
	out, err := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		log.Printf("[!] Не удалось получить список энкодеров: %v", err)
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range hardwareEncoders {
		if strings.Contains(listing, " "+name+" ") {
			return name
		}
	}
	return "libx264"
}

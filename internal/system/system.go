package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// FindLatest returns the most recently modified file in dir with one of exts.
func FindLatest(dir string, exts ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files in %s", strings.Join(exts, "/"), dir)
	}
	return latestFile, nil
}

func hasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// GetBestH264Encoder prefers hardware encoders ffmpeg reports, falling back
// to libx264.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	// VideoToolbox on macOS, then NVENC.
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// RecommendedWorkers sizes the render pool by logical CPUs, capped so that
// in-flight frames use at most a quarter of available memory.
func RecommendedWorkers(frameBytes uint64) int {
	cpus, err := cpu.Counts(true)
	if err != nil || cpus < 1 {
		cpus = 1
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return cpus
	}
	return workersFor(cpus, vm.Available, frameBytes)
}

func workersFor(cpus int, available, frameBytes uint64) int {
	if frameBytes == 0 {
		return max(cpus, 1)
	}
	// Each worker keeps about two frames alive: its own and one queued.
	byMem := int(available / 4 / (2 * frameBytes))
	return max(1, min(cpus, byMem))
}

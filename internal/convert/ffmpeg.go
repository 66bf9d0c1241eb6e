package convert

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
)

// encoderFor maps a target codec identifier to the ffmpeg encoder name
var encoderFor = map[string]string{
	"mp3":    "libmp3lame",
	"flac":   "flac",
	"opus":   "libopus",
	"vorbis": "libvorbis",
	"mp4":    "aac",
	"m4a":    "aac",
}

// CheckFFmpegAvailable checks if ffmpeg is available in PATH
func CheckFFmpegAvailable(bin string) bool {
	if bin == "" {
		bin = "ffmpeg"
	}
	_, err := exec.LookPath(bin)
	return err == nil
}

// transcode runs the external transcoder. Success is a zero exit status;
// everything ffmpeg prints is treated as opaque diagnostic text and only
// surfaced on failure.
func transcode(ctx context.Context, bin, src, dest, codec string, bitrateKbps int, tags map[string]string) error {
	args := []string{
		"-y",
		"-v", "error",
		"-i", src,
		"-vn",
		"-c:a", encoderName(codec),
		"-b:a", fmt.Sprintf("%dk", bitrateKbps),
	}

	// carry the catalogue's tags into the converted file, in stable order
	fields := make([]string, 0, len(tags))
	for field := range tags {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		args = append(args, "-metadata", fmt.Sprintf("%s=%s", field, tags[field]))
	}

	args = append(args, dest)

	cmd := exec.CommandContext(ctx, bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			return fmt.Errorf("%s: %s", bin, string(output))
		}
		return fmt.Errorf("%s: %w", bin, err)
	}
	return nil
}

func encoderName(codec string) string {
	if enc, ok := encoderFor[codec]; ok {
		return enc
	}
	return codec
}

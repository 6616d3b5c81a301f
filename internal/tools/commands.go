// Package tools builds the fixed command lines for the external programs the
// workflow shells out to: the cut-list stripper, the encoder, the thumbnailer
// and the seek-table rebuilder. The argument templates are the contract here;
// nothing in this package interprets the media itself.
package tools

import (
	"fmt"
	"os"
	"strconv"

	"dvrflow/internal/model"
)

// Tool paths, overridable through the environment for chroots and tests.
const (
	defaultCutTool      = "mythtranscode"
	defaultEncoder      = "HandBrakeCLI"
	defaultThumbnailer  = "ffmpegthumbnailer"
	defaultSeekRebuilder = "mythcommflag"
)

// Command is one external tool invocation.
type Command struct {
	Tool string // short name for logs and metrics
	Path string
	Args []string
}

func toolPath(env, fallback string) string {
	if p := os.Getenv(env); p != "" {
		return p
	}
	return fallback
}

// CutCommand losslessly rewrites the recording honoring its cut list, writing
// the stripped stream to out.
func CutCommand(key model.RecordingKey, out string) Command {
	return Command{
		Tool: "cut",
		Path: toolPath("DVRFLOW_CUT_TOOL", defaultCutTool),
		Args: []string{
			"--chanid", strconv.Itoa(key.ChanID),
			"--starttime", key.BackendTime(),
			"--mpeg2", // enable lossless output
			"--honorcutlist",
			"-o", out,
		},
	}
}

// EncodeProfile is the fixed encoder configuration. Quality is the RF value
// (lower is better, 18-30 is normal); Preset trades encoding speed for
// compression.
type EncodeProfile struct {
	Quality   int
	Preset    string
	MaxHeight int
}

// DefaultEncodeProfile returns the stock profile used for recorded TV.
func DefaultEncodeProfile() EncodeProfile {
	return EncodeProfile{Quality: 23, Preset: "veryfast", MaxHeight: 720}
}

// EncodeCommand transcodes src into an H.264/MP4 file at dst.
func EncodeCommand(src, dst string, profile EncodeProfile) Command {
	args := []string{
		"--verbose",
		// video
		"--encoder", "x264",
		"--quality", strconv.Itoa(profile.Quality),
		"--x264-preset", profile.Preset,
		"--x264-tune", "film",
		"--x264-profile", "high", // most devices support 'high' or better
		"--h264-level", "4.1",
		// picture
		fmt.Sprintf("--maxHeight=%d", profile.MaxHeight),
		"--modulus=2",
		"--loose-anamorphic",
		// filters, safe for all video
		"--decomb",
		"--detelecine",
		// audio: first track, AAC 160kbps, Dolby ProLogic II downmix
		"--audio", "1",
		"--aencoder", "av_aac",
		"--ab", "160",
		"--mixdown", "dpl2",
		"--arate", "auto",
		// subtitles: scan for forced native-language track and burn it in,
		// copy tracks 1-3 if present
		"--native-language", "english",
		"--subtitle", "scan,1,2,3",
		"--subtitle-forced", "scan",
		"--subtitle-burned", "scan",
		"--input", src,
		"--optimize",
		"--format", "av_mp4",
		"--output", dst,
	}
	return Command{
		Tool: "encode",
		Path: toolPath("DVRFLOW_ENCODER", defaultEncoder),
		Args: args,
	}
}

// ThumbnailCommands generates the three preview images the web UI expects:
// a base image plus the large and small list variants.
func ThumbnailCommands(src string) []Command {
	path := toolPath("DVRFLOW_THUMBNAILER", defaultThumbnailer)
	variants := []struct {
		size int
		out  string
	}{
		{320, src + ".png"},
		{320, src + ".-1.320x180.png"},
		{100, src + ".-1.100x56.png"},
	}
	cmds := make([]Command, 0, len(variants))
	for _, v := range variants {
		cmds = append(cmds, Command{
			Tool: "thumbnail",
			Path: path,
			Args: []string{
				"-q", "9", // quality level 0-10
				"-t", "10", // seek percentage
				"-i", src,
				"-s", strconv.Itoa(v.size),
				"-o", v.out,
			},
		})
	}
	return cmds
}

// SeekRebuildCommand regenerates the recording's seek table.
func SeekRebuildCommand(key model.RecordingKey) Command {
	return Command{
		Tool: "seekrebuild",
		Path: toolPath("DVRFLOW_SEEK_TOOL", defaultSeekRebuilder),
		Args: []string{
			"--chanid", strconv.Itoa(key.ChanID),
			"--starttime", key.BackendTime(),
			"--rebuild",
		},
	}
}

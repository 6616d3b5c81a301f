package tools

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvrflow/internal/model"
)

func testKey() model.RecordingKey {
	return model.RecordingKey{
		ChanID:    1234,
		StartTime: time.Date(2024, 1, 31, 20, 30, 0, 0, time.UTC),
	}
}

func TestCutCommand(t *testing.T) {
	cmd := CutCommand(testKey(), "/rec/tmp123")
	assert.Equal(t, "mythtranscode", cmd.Path)
	assert.Equal(t, []string{
		"--chanid", "1234",
		"--starttime", "20240131203000",
		"--mpeg2",
		"--honorcutlist",
		"-o", "/rec/tmp123",
	}, cmd.Args)
}

func TestEncodeCommand(t *testing.T) {
	cmd := EncodeCommand("/rec/in.ts", "/rec/out.mp4", DefaultEncodeProfile())
	assert.Equal(t, "HandBrakeCLI", cmd.Path)

	joined := strings.Join(cmd.Args, " ")
	for _, want := range []string{
		"--encoder x264",
		"--quality 23",
		"--x264-preset veryfast",
		"--x264-tune film",
		"--h264-level 4.1",
		"--maxHeight=720",
		"--decomb",
		"--detelecine",
		"--aencoder av_aac",
		"--mixdown dpl2",
		"--subtitle-burned scan",
		"--input /rec/in.ts",
		"--format av_mp4",
		"--output /rec/out.mp4",
	} {
		assert.Contains(t, joined, want)
	}

	// input must precede output
	assert.Less(t,
		strings.Index(joined, "--input"),
		strings.Index(joined, "--output"))
}

func TestEncodeCommandProfileOverrides(t *testing.T) {
	profile := EncodeProfile{Quality: 18, Preset: "slow", MaxHeight: 1080}
	joined := strings.Join(EncodeCommand("a.ts", "a.mp4", profile).Args, " ")
	assert.Contains(t, joined, "--quality 18")
	assert.Contains(t, joined, "--x264-preset slow")
	assert.Contains(t, joined, "--maxHeight=1080")
}

func TestThumbnailCommands(t *testing.T) {
	cmds := ThumbnailCommands("/rec/show.mp4")
	require.Len(t, cmds, 3)

	outs := make([]string, 0, 3)
	for _, cmd := range cmds {
		assert.Equal(t, "ffmpegthumbnailer", cmd.Path)
		joined := strings.Join(cmd.Args, " ")
		assert.Contains(t, joined, "-i /rec/show.mp4")
		outs = append(outs, cmd.Args[len(cmd.Args)-1])
	}
	assert.Equal(t, []string{
		"/rec/show.mp4.png",
		"/rec/show.mp4.-1.320x180.png",
		"/rec/show.mp4.-1.100x56.png",
	}, outs)
	assert.Contains(t, strings.Join(cmds[2].Args, " "), "-s 100")
}

func TestSeekRebuildCommand(t *testing.T) {
	cmd := SeekRebuildCommand(testKey())
	assert.Equal(t, "mythcommflag", cmd.Path)
	assert.Equal(t, []string{
		"--chanid", "1234",
		"--starttime", "20240131203000",
		"--rebuild",
	}, cmd.Args)
}

func TestToolPathOverride(t *testing.T) {
	t.Setenv("DVRFLOW_ENCODER", "/opt/hb/HandBrakeCLI")
	cmd := EncodeCommand("a.ts", "a.mp4", DefaultEncodeProfile())
	assert.Equal(t, "/opt/hb/HandBrakeCLI", cmd.Path)
}

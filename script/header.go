package script

import (
	"io"
	"text/template"
	"time"

	"github.com/touchrec/touchrec/types"
)

// Header describes the recording that a script preamble embeds.
type Header struct {
	Device      string
	RecordedAt  time.Time
	Session     string
	Monitor     types.Monitor
	Calibration types.Calibration
}

// Footer carries the totals echoed after a replay finishes.
type Footer struct {
	Touches     int
	TotalPoints int
	File        string
}

var preambleTemplate = template.Must(template.New("preamble").Parse(`#!/bin/bash
# Touch Recording (touchrec)
# Device: {{.Device}}
# Recording Time: {{.RecordedAt.Format "2006-01-02 15:04:05"}}
# Session: {{.Session}}
#
# RECORDED CONFIGURATION:
# Monitor: {{.Monitor.Name}}
# Resolution: {{.Monitor.Resolution}}
# Position: ({{.Monitor.X}},{{.Monitor.Y}})
# Touch Device Range: {{.Calibration.TouchMaxX}}x{{.Calibration.TouchMaxY}}

# Recording parameters (DO NOT MODIFY)
RECORDED_MONITOR="{{.Monitor.Name}}"
RECORDED_WIDTH={{.Monitor.Width}}
RECORDED_HEIGHT={{.Monitor.Height}}
MONITOR_X={{.Monitor.X}}
MONITOR_Y={{.Monitor.Y}}

verify_resolution() {
    local current_output
    current_output=$(xrandr | grep "^$RECORDED_MONITOR connected" | head -1)

    if [ -z "$current_output" ]; then
        echo "ERROR: monitor '$RECORDED_MONITOR' not found"
        echo "   Available monitors:"
        xrandr | grep " connected" | awk '{print "   - " $1}'
        exit 1
    fi

    local current_res current_pos
    current_res=$(echo "$current_output" | grep -oE '[0-9]+x[0-9]+' | head -1)
    current_pos=$(echo "$current_output" | grep -oE '\+[0-9]+\+[0-9]+' | head -1)

    if [ "$current_res" != "${RECORDED_WIDTH}x${RECORDED_HEIGHT}" ]; then
        echo "WARNING: resolution changed"
        echo "   Recorded: ${RECORDED_WIDTH}x${RECORDED_HEIGHT}"
        echo "   Current:  $current_res"
        echo ""
        read -p "Continue anyway? (y/n): " -n 1 -r
        echo
        if [[ ! $REPLY =~ ^[Yy]$ ]]; then
            echo "Aborted."
            exit 1
        fi
    fi

    local expected_pos="+${MONITOR_X}+${MONITOR_Y}"
    if [ "$current_pos" != "$expected_pos" ]; then
        echo "Monitor position changed from $expected_pos to $current_pos"
        MONITOR_X=$(echo "$current_pos" | cut -d+ -f2)
        MONITOR_Y=$(echo "$current_pos" | cut -d+ -f3)
    fi

    echo "Monitor configuration verified:"
    echo "   Monitor: $RECORDED_MONITOR"
    echo "   Resolution: ${RECORDED_WIDTH}x${RECORDED_HEIGHT}"
    echo "   Position: (${MONITOR_X},${MONITOR_Y})"
}

sleep_ms() {
    local ms=$1
    if [ "$ms" -gt 0 ]; then
        sleep "$(printf '%d.%03d' $((ms / 1000)) $((ms % 1000)))"
    fi
}

do_tap() {
    local x=$(($1 + MONITOR_X))
    local y=$(($2 + MONITOR_Y))
    local duration=${3:-50}

    echo "Tap at ($1,$2) -> absolute ($x,$y)"
    xdotool mousemove "$x" "$y"
    xdotool mousedown 1
    sleep_ms "$duration"
    xdotool mouseup 1
}

# $1 is a JSON array of [x,y,time_ms] points relative to touch-down
do_timed_drag() {
    local points="${1//[[:space:]]/}"
    points="${points#\[\[}"
    points="${points%\]\]}"

    local -a samples
    IFS=' ' read -r -a samples <<< "${points//\],\[/ }"
    if [ "${#samples[@]}" -lt 2 ]; then
        echo "Error: need at least 2 points for drag"
        return 1
    fi

    local x y t prev_t
    IFS=',' read -r x y prev_t <<< "${samples[0]}"
    xdotool mousemove $((x + MONITOR_X)) $((y + MONITOR_Y))
    xdotool mousedown 1

    local i
    for ((i = 1; i < ${#samples[@]}; i++)); do
        IFS=',' read -r x y t <<< "${samples[$i]}"
        if [ $((t - prev_t)) -gt 0 ]; then
            sleep_ms $((t - prev_t))
        fi
        xdotool mousemove $((x + MONITOR_X)) $((y + MONITOR_Y))
        prev_t=$t
    done

    xdotool mouseup 1
}

# uniform 2ms steps, kept for older recordings
do_drag() {
    local coords=("$@")
    local num=${#coords[@]}

    if [ "$num" -lt 4 ]; then
        echo "Error: need at least 2 points"
        return
    fi

    xdotool mousemove $((coords[0] + MONITOR_X)) $((coords[1] + MONITOR_Y))
    xdotool mousedown 1

    local i
    for ((i = 2; i < num; i += 2)); do
        xdotool mousemove $((coords[i] + MONITOR_X)) $((coords[i + 1] + MONITOR_Y))
        sleep 0.002
    done

    xdotool mouseup 1
}

verify_resolution

echo ""
echo "STARTING REPLAY on $RECORDED_MONITOR"
echo "==========================================="
start_replay=$(date +%s%N)

` + EventsMarker + `
`))

var footerTemplate = template.Must(template.New("footer").Parse(`
# END OF EVENTS
end_replay=$(date +%s%N)
duration=$(( (end_replay - start_replay) / 1000000 ))

echo "==========================================="
echo "REPLAY COMPLETED"
echo "   Touches: {{.Touches}}"
echo "   Total Points: {{.TotalPoints}}"
echo "   Replay Duration: ${duration}ms"
echo "   File: {{.File}}"
`))

// WritePreamble writes the shebang, recording metadata, helper functions and
// the runtime resolution guard, ending with EventsMarker.
func WritePreamble(w io.Writer, h Header) error {
	return preambleTemplate.Execute(w, h)
}

// WriteFooter writes the post-replay summary.
func WriteFooter(w io.Writer, f Footer) error {
	return footerTemplate.Execute(w, f)
}

package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/touchrec/touchrec/devices"
	"github.com/touchrec/touchrec/gesture"
	"github.com/touchrec/touchrec/types"
)

type DeviceTestRequest struct {
	Device  string `json:"device"`
	Monitor string `json:"monitor,omitempty"`
	CaptureOptions
}

type DeviceTestResponse struct {
	Device  string `json:"device"`
	Touches int    `json:"touches"`
	Samples int    `json:"samples"`
}

// touchTester prints touch transitions and scaled positions as they arrive.
type touchTester struct {
	cal types.Calibration
	out io.Writer
	now func() time.Time

	active     bool
	down       time.Time
	lastSample time.Time
	rawX       int
	touches    int
	samples    int
}

func (t *touchTester) handle(ev gesture.Event) {
	ts := t.now()
	if ev.HasTime {
		ts = ev.Time
	}

	switch ev.Kind {
	case gesture.Button:
		if ev.Pressed && !t.active {
			t.active = true
			t.down = ts
			t.lastSample = time.Time{}
			t.touches++
			fmt.Fprintf(t.out, "TOUCH DOWN #%d\n", t.touches)
		} else if !ev.Pressed && t.active {
			t.active = false
			fmt.Fprintf(t.out, "TOUCH UP (%dms)\n", ts.Sub(t.down).Milliseconds())
		}
	case gesture.Axis:
		if ev.Axis == gesture.AxisX {
			t.rawX = ev.Value
			return
		}
		if !t.active {
			return
		}

		t.samples++
		x, y := t.cal.ScaleX(t.rawX), t.cal.ScaleY(ev.Value)
		if t.lastSample.IsZero() {
			fmt.Fprintf(t.out, "  (%d,%d)\n", x, y)
		} else {
			fmt.Fprintf(t.out, "  (%d,%d) +%dms\n", x, y, ts.Sub(t.lastSample).Milliseconds())
		}
		t.lastSample = ts
	}
}

// DeviceTestCommand echoes touches on device until ctx is cancelled.
func DeviceTestCommand(ctx context.Context, req DeviceTestRequest, out io.Writer) *CommandResponse {
	monitor, err := resolveMonitor(ctx, req.Monitor)
	if err != nil {
		return NewErrorResponse(err)
	}
	device, err := prepareCapture(ctx, req.Device, req.CaptureOptions)
	if err != nil {
		return NewErrorResponse(err)
	}
	src, err := openCapture(device, req.CaptureOptions)
	if err != nil {
		return NewErrorResponse(err)
	}
	defer src.Close()

	fmt.Fprintf(out, "testing %s on %s (%s), press Ctrl+C to stop\n", device, monitor.Name, monitor.Resolution())
	tester := runTouchTest(ctx, src, GetConfig().TouchCalibration(monitor.Width, monitor.Height), out)

	return NewSuccessResponse(DeviceTestResponse{
		Device:  device,
		Touches: tester.touches,
		Samples: tester.samples,
	})
}

func runTouchTest(ctx context.Context, src devices.EventSource, cal types.Calibration, out io.Writer) *touchTester {
	tester := &touchTester{cal: cal, out: out, now: time.Now}
	streamEvents(ctx, src, tester.handle)
	return tester
}

package commands

import (
	"context"
	"fmt"

	"github.com/touchrec/touchrec/devices"
	"github.com/touchrec/touchrec/types"
)

type MonitorsResponse struct {
	Monitors []types.Monitor `json:"monitors"`
}

// listMonitors is swapped in tests.
var listMonitors = devices.ListMonitors

func MonitorsCommand(ctx context.Context) *CommandResponse {
	monitors, err := listMonitors(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error listing monitors: %w", err))
	}
	if monitors == nil {
		monitors = []types.Monitor{}
	}

	return NewSuccessResponse(MonitorsResponse{Monitors: monitors})
}

// resolveMonitor picks the requested monitor or auto-selects one.
func resolveMonitor(ctx context.Context, name string) (types.Monitor, error) {
	monitors, err := listMonitors(ctx)
	if err != nil {
		return types.Monitor{}, fmt.Errorf("error listing monitors: %w", err)
	}
	return devices.SelectMonitor(monitors, name)
}

package commands

import (
	"github.com/touchrec/touchrec/playback"
	"github.com/touchrec/touchrec/script"
)

type AnalyzeRequest struct {
	File string `json:"file"`
}

type PresetEstimate struct {
	Name    string  `json:"name"`
	Speed   float64 `json:"speed"`
	Seconds float64 `json:"seconds"`
}

type AnalyzeResponse struct {
	File          string           `json:"file"`
	PlaybackSpeed string           `json:"playbackSpeed,omitempty"`
	Summary       script.Summary   `json:"summary"`
	Estimates     []PresetEstimate `json:"estimates"`
}

func AnalyzeCommand(req AnalyzeRequest) *CommandResponse {
	file, err := ResolveScript(req.File)
	if err != nil {
		return NewErrorResponse(err)
	}
	s, err := script.ParseFile(file)
	if err != nil {
		return NewErrorResponse(err)
	}

	summary := script.Analyze(s)
	resp := AnalyzeResponse{
		File:      file,
		Summary:   summary,
		Estimates: presetEstimates(summary),
	}
	if speed, ok := s.PlaybackSpeed(); ok {
		resp.PlaybackSpeed = speed
	}
	return NewSuccessResponse(resp)
}

func presetEstimates(summary script.Summary) []PresetEstimate {
	estimates := make([]PresetEstimate, 0, len(playback.Presets))
	for _, p := range playback.Presets {
		estimates = append(estimates, PresetEstimate{
			Name:    p.Name,
			Speed:   p.Speed,
			Seconds: float64(summary.EstimateAt(p.Speed)) / 1000,
		})
	}
	return estimates
}

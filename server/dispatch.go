package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/touchrec/touchrec/commands"
)

const monitorsTimeout = 10 * time.Second

var errInvalidParams = errors.New("invalid parameters")

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// GetMethodRegistry returns a map of method names to handler functions
// This is used by both the HTTP and WebSocket endpoints
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"recordings":      handleRecordings,
		"analyze":         handleAnalyze,
		"transform":       handleTransform,
		"monitors":        handleMonitors,
		"devices":         handleDevices,
		"play":            handlePlay,
		"status":          handleStatus,
		"stop":            handleStop,
		"server.shutdown": handleShutdown,
	}
}

// Execute dispatches a method call using the registry
func Execute(method string, params json.RawMessage) (interface{}, error) {
	handler, exists := GetMethodRegistry()[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(params)
}

// decodeParams unmarshals optional params into v.
func decodeParams(params json.RawMessage, v interface{}, fields string) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: %v. Expected fields: %s", errInvalidParams, err, fields)
	}
	return nil
}

// requireParams is decodeParams for methods that cannot run without params.
func requireParams(params json.RawMessage, v interface{}, fields string) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: 'params' is required with fields: %s", errInvalidParams, fields)
	}
	return decodeParams(params, v, fields)
}

func unwrap(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

func handleRecordings(params json.RawMessage) (interface{}, error) {
	var req commands.RecordingsRequest
	if err := decodeParams(params, &req, "dir"); err != nil {
		return nil, err
	}
	return unwrap(commands.RecordingsCommand(req))
}

func handleAnalyze(params json.RawMessage) (interface{}, error) {
	var req commands.AnalyzeRequest
	if err := requireParams(params, &req, "file"); err != nil {
		return nil, err
	}
	return unwrap(commands.AnalyzeCommand(req))
}

func handleTransform(params json.RawMessage) (interface{}, error) {
	var req commands.TransformRequest
	if err := requireParams(params, &req, "file, speed, output"); err != nil {
		return nil, err
	}
	if req.Speed == "" {
		return nil, fmt.Errorf("%w: 'speed' is required", errInvalidParams)
	}
	return unwrap(commands.TransformCommand(req))
}

func handleMonitors(params json.RawMessage) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), monitorsTimeout)
	defer cancel()
	return unwrap(commands.MonitorsCommand(ctx))
}

func handleDevices(params json.RawMessage) (interface{}, error) {
	var req commands.DevicesRequest
	if err := decodeParams(params, &req, "touchOnly"); err != nil {
		return nil, err
	}
	return unwrap(commands.DevicesCommand(req))
}

func handlePlay(params json.RawMessage) (interface{}, error) {
	var req commands.PlayRequest
	if err := requireParams(params, &req, "file, speed, speedMode, loop, count, durationSeconds, pauseSeconds"); err != nil {
		return nil, err
	}
	return playbacks.start(req)
}

func handleStatus(params json.RawMessage) (interface{}, error) {
	return playbacks.status(), nil
}

func handleStop(params json.RawMessage) (interface{}, error) {
	return playbacks.stop(), nil
}

func handleShutdown(params json.RawMessage) (interface{}, error) {
	requestShutdown()
	return okResponse, nil
}

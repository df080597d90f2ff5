package commands

import (
	"sync"

	"github.com/touchrec/touchrec/config"
	"github.com/touchrec/touchrec/devices"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// NewErrorResponseWithData creates an error response that still carries
// whatever the command produced before failing
func NewErrorResponseWithData(err error, data interface{}) *CommandResponse {
	resp := NewErrorResponse(err)
	resp.Data = data
	return resp
}

var (
	stateMu      sync.RWMutex
	shutdownHook *devices.ShutdownHook
	activeConfig *config.Config
)

// SetShutdownHook is called once at startup; commands register capture
// processes and temp files with it.
func SetShutdownHook(hook *devices.ShutdownHook) {
	stateMu.Lock()
	defer stateMu.Unlock()
	shutdownHook = hook
}

// GetShutdownHook returns the hook, creating one if none was set.
func GetShutdownHook() *devices.ShutdownHook {
	stateMu.Lock()
	defer stateMu.Unlock()
	if shutdownHook == nil {
		shutdownHook = devices.NewShutdownHook()
	}
	return shutdownHook
}

// SetConfig installs the configuration loaded by the CLI.
func SetConfig(cfg *config.Config) {
	stateMu.Lock()
	defer stateMu.Unlock()
	activeConfig = cfg
}

// GetConfig returns the active configuration, or defaults.
func GetConfig() *config.Config {
	stateMu.RLock()
	defer stateMu.RUnlock()
	if activeConfig == nil {
		return config.Default()
	}
	return activeConfig
}

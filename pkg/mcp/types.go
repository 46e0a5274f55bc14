package mcp

import "github.com/urmzd/kenkudeck/pkg/dispatch"

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status          string         `json:"status" jsonschema:"description=Overall health status (healthy or unhealthy)"`
	Serial          string         `json:"serial" jsonschema:"description=Serial link status (connected, disconnected or none)"`
	Dispatcher      dispatch.Stats `json:"dispatcher" jsonschema:"description=Dispatcher state and counters"`
	LastRemoteError string         `json:"last_remote_error,omitempty" jsonschema:"description=Most recent Kenku FM failure"`
	Timestamp       string         `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// PressKeyOutput is the output for the press_key tool
type PressKeyOutput struct {
	Success bool             `json:"success" jsonschema:"description=Whether every command of the key ran"`
	Outcome dispatch.Outcome `json:"outcome" jsonschema:"description=Instruction outcome"`
}

// Package driving defines the operations the CLI, TUI and MCP server call.
// Each interface is implemented by a service in internal/core/services.
package driving

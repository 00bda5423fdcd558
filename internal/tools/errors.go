// Sentinel error types for registry misconfiguration. Both indicate a
// wiring problem, not a transient execution failure.
package tools

import "fmt"

// ToolNotFoundError is returned when a lookup or dispatch targets a tool
// that was never registered.
type ToolNotFoundError struct {
	ToolName string
}

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q is not registered", e.ToolName)
}

// DuplicateToolError is returned when a tool name is registered twice.
type DuplicateToolError struct {
	ToolName string
}

// Error implements the error interface.
func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.ToolName)
}

package types

// Category represents service categories
type Category string

const (
	CategoryShell      Category = "shell"
	CategoryFilesystem Category = "filesystem"
	CategorySkills     Category = "skills"
)

// Service represents a service definition
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool represents a service tool
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter represents a tool parameter
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Context provides execution context for tool calls
type Context struct {
	RequestID *string `json:"request_id,omitempty"`
	AgentID   *string `json:"agent_id,omitempty"`
}

// Result represents a tool execution result
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
}

// Failure builds an unsuccessful result carrying the given message.
func Failure(message string) *Result {
	return &Result{Success: false, Error: &message}
}

// Ok builds a successful result with the given payload.
func Ok(data map[string]interface{}) *Result {
	return &Result{Success: true, Data: data}
}

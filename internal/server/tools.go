package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Tool names.
const (
	ToolLicenseExtract = "license_extract"
	ToolLicenseOverlay = "license_overlay"
	ToolUploadsCleanup = "uploads_cleanup"
	ToolUploadsList    = "uploads_list"
	ToolOCRInfo        = "ocr_info"
)

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: ToolLicenseExtract,
			Description: "Extract the fields of a Russian driver license from photos of its front and back. " +
				"Each side is given either as a file path or as base64-encoded image data. " +
				"At least one side is required; the back may be omitted.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"front_path":   stringProp("Absolute path to the front photo"),
					"front_base64": stringProp("Front photo as base64 (a data: URL prefix is accepted)"),
					"back_path":    stringProp("Absolute path to the back photo"),
					"back_base64":  stringProp("Back photo as base64 (a data: URL prefix is accepted)"),
					"format": map[string]any{
						"type":        "string",
						"enum":        []string{FormatJSON, FormatMarkdown},
						"description": "Result format. Default json",
						"default":     FormatJSON,
					},
				},
			},
		},
		{
			Name: ToolLicenseOverlay,
			Description: "Align one photo to the canonical card layout and return it as base64-encoded PNG " +
				"with the regions that would be read outlined. Use this to check alignment and template choice.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"role": map[string]any{
						"type":        "string",
						"enum":        []string{"front", "back"},
						"description": "Which side the photo shows",
					},
					"path":   stringProp("Absolute path to the photo"),
					"base64": stringProp("Photo as base64"),
				},
				"required": []string{"role"},
			},
		},
		{
			Name:        ToolUploadsCleanup,
			Description: "Delete stored upload photos older than the retention period.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"ttl_hours": map[string]any{
						"type":        "number",
						"description": "Retention in hours. Defaults to the configured upload TTL",
					},
				},
			},
		},
		{
			Name:        ToolUploadsList,
			Description: "List the stored photos of one extraction request from the upload index.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"request_id": stringProp("Request id returned by license_extract, e.g. ocr_1a2b3c4d5e"),
				},
				"required": []string{"request_id"},
			},
		},
		{
			Name:        ToolOCRInfo,
			Description: "Report the text recognition engine, its languages, and upload storage status.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"tools": GetToolDefinitions(),
		},
	}
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openmapgames/mergewalk/game/engine"
	"github.com/openmapgames/mergewalk/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Mergewalk",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Mergewalk - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk around an infinite grid, pick up tokens, and merge equal ones.
Merging two equal tokens makes one token of double the value. Craft a
token of the target value (256 under classic rules) to win.

AVAILABLE TOOLS:
- game_state: Get current state (position, held token, win status)
- viewport: Render the window of cells around the player
- click_cell: Interact with a cell (pick up / merge / swap)
- move: Single manual step (north/south/east/west)
- set_mode: Switch between manual and continuous GPS movement
- new_game: Discard the save and start fresh
- save_game: Persist current progress
- action_history: View past actions
- create_session: Create a new game session
- get_session: Get session details
- list_sessions: List all active sessions
- list_rules: List available rule sets
- game_instructions: Get comprehensive game instructions
- describe_cell: Inspect one cell in the current viewport

NOTE: Clicks only work within reach of the player (Chebyshev distance,
3 cells under classic rules). Step or wait for GPS fixes to get closer.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionProp := map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional rule set selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"rules_id": map[string]interface{}{
					"type":        "string",
					"description": "Name of the rule set to use (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "viewport",
		Description: "Render the window of cells around the player, showing token values",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleViewport)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "click_cell",
		Description: "Interact with a cell: pick up its token when empty-handed, merge when values match, swap otherwise. The cell must be within reach.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"i": map[string]interface{}{
					"type":        "integer",
					"description": "Grid row of the cell (increases northward)",
				},
				"j": map[string]interface{}{
					"type":        "integer",
					"description": "Grid column of the cell (increases eastward)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this interaction (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "i", "j"},
		},
	}, c.handleClickCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Step the player one cell in a direction (manual mode only)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"north", "south", "east", "west"},
					"description": "Direction to step",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_mode",
		Description: "Switch the movement source between manual steps and continuous GPS fixes",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"manual", "continuous"},
					"description": "Movement mode to activate",
				},
			},
			Required: []string{"session_id", "mode"},
		},
	}, c.handleSetMode)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Discard the current save and start a fresh game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_game",
		Description: "Persist the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleSaveGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "Get action history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleActionHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rules",
		Description: "List available rule sets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about one cell in the current viewport: its token value, whether it is in reach, and the interaction a click there would trigger.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp,
				"i": map[string]interface{}{
					"type":        "integer",
					"description": "Grid row of the cell",
				},
				"j": map[string]interface{}{
					"type":        "integer",
					"description": "Grid column of the cell",
				},
			},
			Required: []string{"session_id", "i", "j"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) fetchViewport(sessionID string) ([]engine.ViewportCell, error) {
	var response struct {
		Cells []engine.ViewportCell `json:"cells"`
	}
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/viewport", sessionID), nil, &response)
	return response.Cells, err
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	rulesID, _ := args["rules_id"].(string)

	body := map[string]string{}
	if rulesID != "" {
		body["rules_id"] = rulesID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nRules: %s\nMode: %s\n",
		session.ID, session.RulesName, session.Mode)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Rules: %s, Mode: %s, Created: %s)\n",
			s.ID, s.RulesName, s.Mode, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Session: %s\nRules: %s\nMode: %s\nCreated: %s\n\n%s",
		session.ID, session.RulesName, session.Mode,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleViewport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	cells, err := c.fetchViewport(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatViewport(cells, state.PlayerPos)), nil
}

func (c *Client) handleClickCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	i, _ := args["i"].(float64)
	j, _ := args["j"].(float64)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]int{"i": int(i), "j": int(j)}

	var result service.ClickResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/click", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatClickResult(&result)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]string{"direction": direction}

	var result service.MoveResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := ""
	if result.Success {
		response = fmt.Sprintf("✓ Stepped %s to %s\n", direction, result.GameState.PlayerPos.Key())
	} else {
		response = fmt.Sprintf("✗ Step rejected: %s\n", result.Message)
	}
	response += "\n" + formatGameState(result.GameState)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleSetMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	mode, _ := args["mode"].(string)

	body := map[string]string{"mode": mode}

	var result service.ModeResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/mode", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Movement mode: %s", result.Mode)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/new-game", sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/save", sessionID), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Game saved"), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rules []service.RulesInfo
	if err := c.apiCall("GET", "/api/rules", nil, &rules); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Rule Sets:\n\n"
	for _, r := range rules {
		result += fmt.Sprintf("• %s\n  %s\n  Win value: %d, View radius: %d\n\n",
			r.RulesID, r.Description, r.WinValue, r.ViewRadius)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🎮 Mergewalk - Complete Instructions

GAME OBJECTIVE:
Craft a single token of the target value (256 under classic rules) by
picking up and merging tokens scattered across an infinite grid.

GAME MECHANICS:
• The world is an infinite grid of cells. Each cell holds at most one token.
• Tokens appear deterministically: each cell's content is fixed by its
  coordinates, and a cell is rolled exactly once, the first time it
  enters your viewport. Leaving and coming back never re-rolls a cell.
• You hold at most one token at a time.

CLICK INTERACTIONS (cell must be within reach):
• Empty hands + token in cell  → PICK UP (cell becomes empty)
• Held token equals cell token → MERGE (cell gets double value, hands empty)
• Held token differs           → SWAP (held and cell exchange)
• Empty hands + empty cell     → nothing happens
• Out-of-reach clicks are rejected and change nothing.

MOVEMENT MODES:
• manual: step one cell at a time with the move tool (north/south/east/west)
• continuous: the player follows GPS fixes; directional commands are
  rejected. If the GPS feed fails, movement falls back to manual and
  stays there until you explicitly set continuous mode again.

VIEWPORT:
• You see a square window around your position (11x11 under classic rules).
• Moving reveals new cells; newly revealed cells may spawn tokens.
• Reach is smaller than the viewport: you can see tokens you cannot
  yet touch. Walk toward them first.

STRATEGY HINTS:
• Merging only doubles: to reach 256 you need a chain of equal merges.
• Use swap to bank a token in a convenient cell for later.
• The board is deterministic: revisiting an area shows exactly what you
  left there. Emptied cells stay empty forever.

SESSION MANAGEMENT:
• Multiple sessions can run simultaneously, each with its own save slot.
• Each session has a unique 4-character ID.
• Progress auto-saves after each mutating action; new_game clears the
  slot and restarts.

Good luck out there! 🚶🗺️`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	iArg, _ := args["i"].(float64)
	jArg, _ := args["j"].(float64)
	i, j := int(iArg), int(jArg)

	var state engine.GameState
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cells, err := c.fetchViewport(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	target := engine.Coord{I: i, J: j}
	var found *engine.ViewportCell
	for idx := range cells {
		if cells[idx].Coord == target {
			found = &cells[idx]
			break
		}
	}
	if found == nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Cell %s is outside the current viewport. Move closer first.", target.Key())), nil
	}

	dist := engine.Chebyshev(state.PlayerPos, target)
	content := "empty"
	if found.Present {
		content = fmt.Sprintf("token of value %d", found.Value)
	}

	interaction := describeInteraction(state.Held, found)

	result := fmt.Sprintf(`Cell %s:
Distance from player: %d
Content: %s
Clicking now would: %s`,
		target.Key(), dist, content, interaction)
	return mcp.NewToolResultText(result), nil
}

func describeInteraction(held int, cell *engine.ViewportCell) string {
	switch {
	case !cell.Present && held == 0:
		return "do nothing (empty hands, empty cell)"
	case !cell.Present && held > 0:
		return "do nothing (the cell is empty; drops are not a thing, only swaps and merges)"
	case held == 0:
		return fmt.Sprintf("PICK UP the %d token", cell.Value)
	case held == cell.Value:
		return fmt.Sprintf("MERGE into a %d token", cell.Value*2)
	default:
		return fmt.Sprintf("SWAP your %d for the cell's %d", held, cell.Value)
	}
}

// Formatting helpers

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	held := "empty hands"
	if state.Held > 0 {
		held = fmt.Sprintf("holding %d", state.Held)
	}
	b.WriteString(fmt.Sprintf("Position: %s | %s | Actions: %d\n",
		state.PlayerPos.Key(), held, state.TotalActions))

	if state.Won {
		b.WriteString("\n🎉 YOU WIN!\n")
	}
	if state.Message != "" {
		b.WriteString(fmt.Sprintf("Message: %s\n", state.Message))
	}

	return b.String()
}

// formatViewport renders the cell window as a grid, north up, with the
// player marked @ and token values left-padded per column.
func formatViewport(cells []engine.ViewportCell, playerPos engine.Coord) string {
	if len(cells) == 0 {
		return "Viewport is empty"
	}

	rows := make(map[int][]engine.ViewportCell)
	var is []int
	for _, cell := range cells {
		if _, ok := rows[cell.Coord.I]; !ok {
			is = append(is, cell.Coord.I)
		}
		rows[cell.Coord.I] = append(rows[cell.Coord.I], cell)
	}
	// North (greater i) on top.
	sort.Sort(sort.Reverse(sort.IntSlice(is)))

	var b strings.Builder
	b.WriteString("Viewport (north up, @ = you):\n")
	for _, i := range is {
		row := rows[i]
		sort.Slice(row, func(x, y int) bool { return row[x].Coord.J < row[y].Coord.J })
		for idx, cell := range row {
			if idx > 0 {
				b.WriteString(" ")
			}
			switch {
			case cell.Coord == playerPos:
				b.WriteString("  @")
			case cell.Present:
				b.WriteString(fmt.Sprintf("%3d", cell.Value))
			default:
				b.WriteString("  .")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatClickResult(result *service.ClickResult) string {
	var b strings.Builder

	switch result.Outcome {
	case "pick_up":
		b.WriteString("✓ Picked up\n")
	case "merge":
		b.WriteString("✓ Merged\n")
	case "swap":
		b.WriteString("✓ Swapped\n")
	default:
		if result.Success {
			b.WriteString("✓ Done\n")
		} else {
			b.WriteString("✗ Nothing happened\n")
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Action History (page %d of %d, %d total):\n\n",
		history.Page, history.TotalPages, history.TotalActions))

	for _, entry := range history.Actions {
		status := "✓"
		if !entry.Success {
			status = "✗"
		}
		line := fmt.Sprintf("%s #%d %s %s→%s", status, entry.Seq, entry.Action,
			entry.From.Key(), entry.To.Key())
		if entry.Outcome != "" {
			line += " (" + entry.Outcome + ")"
		}
		b.WriteString(line + "\n")
	}

	if history.HasNext {
		b.WriteString("\n(more pages available)")
	}
	return b.String()
}

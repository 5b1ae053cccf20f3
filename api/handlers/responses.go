// Package handlers provides HTTP API request handlers.
package handlers

import "github.com/gin-gonic/gin"

// ErrorResponse is the JSON envelope for error replies.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sendError sends an error response with the appropriate status code.
func sendError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// getAgentID extracts the agent ID bound by the authentication
// middleware, or the empty string when the request is unauthenticated.
// Callers decide what an anonymous author means; nothing invented here
// ends up persisted.
func getAgentID(c *gin.Context) string {
	if agentID, exists := c.Get("agentID"); exists {
		if id, ok := agentID.(string); ok {
			return id
		}
	}
	return ""
}

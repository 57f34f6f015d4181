package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the envelope of every failed request.
func ErrorResponse(message string) gin.H {
	return gin.H{
		"success": false,
		"message": message,
	}
}

// SuccessResponse wraps data in the success envelope. A nil data is omitted.
func SuccessResponse(message string, data any) gin.H {
	resp := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		resp["data"] = data
	}
	return resp
}

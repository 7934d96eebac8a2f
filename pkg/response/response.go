// Package response 提供统一的 HTTP 响应封装
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body 统一响应结构
type Body struct {
	// 业务码，空串表示成功
	Code string `json:"code"`
	// 提示信息
	Message string `json:"message"`
	// 数据载荷
	Data interface{} `json:"data,omitempty"`
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{
		Code:    "",
		Message: "ok",
		Data:    data,
	})
}

// ErrorWithStatus 返回带状态码的错误响应
func ErrorWithStatus(c *gin.Context, status int, message string, code string) {
	c.JSON(status, Body{
		Code:    code,
		Message: message,
	})
}

// Package contextx 提供跨层传递事务句柄与请求标识的 context 辅助函数
package contextx

import "context"

type ctxKey int

const (
	txKey ctxKey = iota
	requestIDKey
)

// WithTx 将事务句柄放入 context，供仓储在同一事务内工作
func WithTx(ctx context.Context, tx any) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTx 从 context 中取出事务句柄，不存在时返回 nil
func GetTx(ctx context.Context) any {
	if ctx == nil {
		return nil
	}
	return ctx.Value(txKey)
}

// WithRequestID 将请求标识放入 context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID 从 context 中取出请求标识，不存在时返回空串
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

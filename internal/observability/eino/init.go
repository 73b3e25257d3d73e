// Package eino 注册 Eino 全局回调，为每次 ChatModel 调用生成追踪、指标与用量流水
package eino

import (
	"sync"

	einocallbacks "github.com/cloudwego/eino/callbacks"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"

	"fairybook-api/internal/domain/service"
)

var initOnce sync.Once

// Init 注册全局 callbacks（进程级一次），usageRecorder 可为 nil
func Init(usageRecorder service.LLMUsageRecorder) {
	initOnce.Do(func() {
		handler := cbtemplate.NewHandlerHelper().
			ChatModel(newChatModelCallbackHandler(usageRecorder)).
			Handler()
		einocallbacks.AppendGlobalHandlers(handler)
	})
}

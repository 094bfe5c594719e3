package testtool

import (
	"net/http"
	_ "net/http/pprof" // 匯入後會自動註冊 pprof endpoint

	"chat_presence_service/pkg/config"
	"chat_presence_service/pkg/logger"

	"go.uber.org/zap"
)

// PprofAddr pprof 只聽本機
const PprofAddr = "127.0.0.1:6060"

// StartPprof 依設定啟動 pprof 監控伺服器, production 一律關閉
func StartPprof(enabled bool) bool {
	if !enabled || config.IsProduction() {
		logger.Log.Info("pprof is disabled")
		return false
	}

	go func() {
		logger.Log.Info("Starting pprof server", zap.String("addr", PprofAddr))
		if err := http.ListenAndServe(PprofAddr, nil); err != nil {
			logger.Log.Errorf("pprof server failed:", err)
		}
	}()
	return true
}

// curl http://127.0.0.1:6060/debug/pprof/goroutine?debug=1
// 可以確認每條 websocket 連線只有 read loop + writePump 兩個 goroutine

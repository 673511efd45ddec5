// Package logger provides adapters for popular logger libraries to work with keeldb's Logger interface.
//
// The adapters allow you to use your existing logger with keeldb without writing boilerplate.
// Note that the standard library's slog.Logger already implements keeldb.Logger directly.
//
// Example with zap:
//
//	import (
//	    "keeldb"
//	    "keeldb/logger"
//	    "keeldb/bufferpool"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    bp, err := bufferpool.New(128, 2, dm, bufferpool.WithLogger(logger.NewZap(zapLogger)))
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer bp.Close()
//	}
package logger

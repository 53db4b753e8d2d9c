// Package logging provides structured logging for CakeBoard.
//
// It wraps log/slog so every component logs the same way: JSON or text
// output, level filtering, and service and version fields on every entry.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("board running", "target_hz", 1000000)
//	logger.Error("mqtt connect failed", "error", err)
//
// Components take a narrow Logger interface (Debug, Info, Warn, Error),
// which *Logger satisfies through the embedded *slog.Logger.
package logging

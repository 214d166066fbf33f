// Package logger provides structured logging for diext using zerolog.
//
// It supports JSON and console output, level configuration, a process-wide
// global logger and component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di.container")
//	log.Debug("service resolved", logger.Fields(logger.FieldService, "*app.Repo"))
package logger

// Package logging builds the hub's zap loggers.
//
// Production logs are JSON at info level; development logs (LOG_DEV or
// --dev) are colored console output at debug level. Components take a
// named child with Component:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	loop := shell.NewLoop(logger.Component("shell"))
//
// Tests use NewNop.
package logging

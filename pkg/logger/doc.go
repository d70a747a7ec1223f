// Package logger builds slog loggers with context-aware attribute injection.
//
// The factory produces JSON loggers for production and text loggers for
// development, and supports registering context extractors so that
// request-scoped values (tenant id, request id) are attached to every log
// record automatically:
//
//	log := logger.New(
//		logger.WithProduction("payments"),
//		logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "payment created") // carries tenant_id from ctx
package logger

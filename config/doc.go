// Package config loads importer settings and query definition files.
//
// Settings come from NEWSAPI_-prefixed environment variables and an
// optional config file:
//
//	NEWSAPI_KEY               provider API key
//	NEWSAPI_DISABLED          administratively disable provider access
//	NEWSAPI_IMPORT_MOCK_DATA  import mock records while disabled
//	NEWSAPI_DEBUG_SOURCES     log provider sources at startup
//	NEWSAPI_POOL_SIZE         worker pool size (0 = CPU count - 1)
//	NEWSAPI_MAX_IN_FLIGHT     concurrent provider requests
//	NEWSAPI_BASE_URL          provider API root
//	NEWSAPI_TIMEOUT           per-request timeout, e.g. 30s
//	NEWSAPI_SPILL_DIR         directory for the badger record set
//	NEWSAPI_SCHEDULE          cron expression for the schedule command
//	NEWSAPI_METRICS_ADDR      listen address for /metrics
//
// Query definitions are read from YAML (or JSON) files with LoadQueries.
package config

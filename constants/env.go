package constants

const (
	EnvLogLevel    = "LANDINGZONE_LOG_LEVEL"
	EnvConfigFile  = "LANDINGZONE_CONFIG"
	EnvBucket      = "LANDINGZONE_BUCKET"
	EnvAwsEndpoint = "AWS_ENDPOINT_URL"
	EnvAwsAttempts = "AWS_MAX_ATTEMPTS"

	EnvDNSLookupMaxParallel        = "LANDINGZONE_DNS_LOOKUP_MAX_PARALLEL"
	EnvDNSCacheRefreshIntervalSecs = "LANDINGZONE_DNS_CACHE_REFRESH_INTERVAL_SECS"
	EnvHTTPMaxConnsPerHost         = "LANDINGZONE_HTTP_TRANSPORT_MAX_CONNS_PER_HOST"
)

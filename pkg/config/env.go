package config

const (
	EnvAPIBaseURL = "API_BASE_URL"
	EnvStreamPath = "STREAM_PATH"
	EnvLogLevel   = "LOG_LEVEL"

	EnvUserID    = "USER_ID"
	EnvUserEmail = "USER_EMAIL"

	EnvHoldTTL      = "HOLD_TTL"
	EnvTickInterval = "TICK_INTERVAL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"

	EnvStreamReconnect      = "STREAM_RECONNECT"
	EnvStreamBackoffInitial = "STREAM_BACKOFF_INITIAL"
	EnvStreamBackoffMax     = "STREAM_BACKOFF_MAX"
)

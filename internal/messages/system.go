package messages

// System messages for authentication, HTTP plumbing, and polling.
const (
	// AuthTokenFailedFmt wraps token endpoint failures.
	AuthTokenFailedFmt     = "%w: %w"
	AuthAuthenticationFail = "authentication failed"
	AuthEmptyToken         = "token endpoint returned an empty access token"
	AuthMissingFieldFmt    = "auth config: %s is required"

	APIInvalidArgument        = "invalid argument"
	APIFileNotFound           = "file not found"
	APIRemoteRequestFailed    = "remote request failed"
	APIStaleConcurrencyToken  = "stale concurrency token"
	APIBuildRequestFmt        = "%s: build request: %w"
	APISendRequestFmt         = "%s: %w"
	APIDecodeResponseFmt      = "%s: decode response: %w"
	APIUnexpectedBodyFmt      = "unexpected response body starting with %q"
	APIRequestErrorFmt        = "%s: %s"
	APIRequestErrorDetailFmt  = "%s: %s: %s"
	APIBlankExtensionIDFmt    = "%w: extension id is blank or missing; got %q"
	APIReadBodyFmt            = "%s: read body: %w"
	APIEmptyResponseFmt       = "%w: %s: response contained no record"
	APIEncodeBodyFmt          = "%s: encode body: %w"
	APIInvalidScheduleFmt     = "%w: schedule %q is not one of %s"
	APIInvalidSyncModeFmt     = "%w: schema sync mode %q is not one of %s"
	APIFilterExcludeMicrosoft = "publisher ne 'Microsoft'"
	APIFilterIDFmt            = "id eq %s"

	RetryInvalidInterval = "retry: interval must be greater than zero"

	LoggingWriteFailedFmt = "write log record: %w"
)

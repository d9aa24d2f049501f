package messages

// Config messages for input loading and validation.
const (
	// ConfigMissingProfileFmt formats missing profile file errors.
	ConfigMissingProfileFmt  = "missing profile %s: %w"
	ConfigInvalidProfileFmt  = "invalid profile %s: %w"
	ConfigUnknownKeysFmt     = "%s: unrecognized profile keys: %w"
	ConfigMissingEnvFileFmt  = "missing env file %s: %w"
	ConfigInvalidEnvFileFmt  = "invalid env file %s: %w"
	ConfigParseEnvFmt        = "parse environment: %w"
	ConfigExpandPathFmt      = "expand path %q: %w"
	ConfigMissingInputsFmt   = "missing required inputs: %s"
	ConfigInvalidGUIDFmt     = "%s must be a GUID, got %q"
	ConfigPositiveSecondsFmt = "%s must be greater than zero, got %d"
	ConfigNegativeSecondsFmt = "%s must not be negative, got %d"

	// ConfigRedacted replaces secrets in logged inputs.
	ConfigRedacted    = "[REDACTED]"
	ConfigNotProvided = "[NOT PROVIDED]"

	EnvfileLineErrorFmt            = "line %d: %w"
	EnvfileReadFailedFmt           = "read env file: %w"
	EnvfileExpectedKeyValue        = "expected KEY=VALUE"
	EnvfileUnterminatedQuotedValue = "unterminated quoted value"
	EnvfileInvalidQuotedSuffix     = "unexpected characters after quoted value"
)

package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing provider credentials")

	// Token lifecycle errors
	ErrNotConnected   = fmt.Errorf("provider not connected")
	ErrTokenExpired   = fmt.Errorf("access token expired")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")

	// Provider call errors
	ErrProviderTimeout    = fmt.Errorf("provider request timed out")
	ErrProviderConnection = fmt.Errorf("provider connection failed")
	ErrProviderServer     = fmt.Errorf("provider server error")
	ErrProviderClient     = fmt.Errorf("provider rejected request")
	ErrUnknownProvider    = fmt.Errorf("unknown provider")
	ErrNoRecommendations  = fmt.Errorf("no recommendations available")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Persistence errors
	ErrNotFound       = fmt.Errorf("not found")
	ErrDuplicateWish  = fmt.Errorf("wish already queued")
	ErrEncryptionKey  = fmt.Errorf("encryption key unavailable")
	ErrDecryptionFail = fmt.Errorf("token decryption failed")
)

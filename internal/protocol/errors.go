package protocol

const (
	// Input validation.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrBadCoordinate = "E_BAD_COORDINATE"

	// Cache/wallet layer.
	ErrNotFound    = "E_NOT_FOUND"
	ErrCacheEmpty  = "E_CACHE_EMPTY"
	ErrWalletEmpty = "E_WALLET_EMPTY"

	// Location provider.
	ErrGeoDisabled = "E_GEO_DISABLED"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:    {},
	ErrBadCoordinate: {},
	ErrNotFound:      {},
	ErrCacheEmpty:    {},
	ErrWalletEmpty:   {},
	ErrGeoDisabled:   {},
	ErrInternal:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

package building

import "errors"

var (
	ErrInvalidMaterial   = errors.New("invalid material")
	ErrNegativeDimension = errors.New("room dimensions must be >= 0")
	ErrNegativeLoad      = errors.New("room loads must be >= 0")
	ErrNegativeArea      = errors.New("envelope areas must be >= 0")
	ErrNegativeUValue    = errors.New("envelope U-values must be >= 0")
	ErrNonFinite         = errors.New("value must be a finite number")
)

package numeric

import "errors"

// ErrInvalidParameter reports an out-of-range or incompatible numeric
// setting, such as a Savitzky-Golay window that is even or not larger
// than the polynomial order.
var ErrInvalidParameter = errors.New("invalid parameter")

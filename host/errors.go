package host

import "errors"

// ErrStreamingUnsupported is returned when a caller requests streaming from a
// host that only supports the single-shot request form.
var ErrStreamingUnsupported = errors.New("streaming mode is not supported for routing host agents")

package log

import "errors"

var ErrUnknownEncoding = errors.New("unknown log encoding")

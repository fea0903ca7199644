package ledmap

import "errors"

var errImageTooLarge = errors.New("ledmap: image exceeds maximum of 1e7 pixels")

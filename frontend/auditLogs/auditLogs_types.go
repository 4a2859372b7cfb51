package auditlogs

import "errors"

var errInvalidLimit = errors.New("limit must be a positive number")

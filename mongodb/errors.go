// mongodb/errors.go
package mongodb

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes the initializer cares about.
const (
	CodeIndexNotFound         = 27
	CodeNamespaceExists       = 48
	CodeIndexOptionsConflict  = 85
	CodeIndexKeySpecsConflict = 86
	CodeDuplicateKey          = 11000
)

// hasCode reports whether err (or anything it wraps) is a server error
// carrying the given code. WriteException, BulkWriteException and
// CommandError all implement mongo.ServerError.
func hasCode(err error, code int) bool {
	if err == nil {
		return false
	}
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(code)
}

// IsDup reports whether err is a Mongo duplicate-key error (E11000).
// Some hosts only surface "E11000" as text, so the message is checked too.
func IsDup(err error) bool {
	if err == nil {
		return false
	}
	if hasCode(err, CodeDuplicateKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "e11000") || strings.Contains(s, "duplicate key")
}

// IsNamespaceExists reports whether err is the server refusing to create a
// collection that already exists.
func IsNamespaceExists(err error) bool {
	return hasCode(err, CodeNamespaceExists)
}

// IsIndexConflict reports whether err is the server refusing an index because
// one with the same name or keys already exists with different options.
func IsIndexConflict(err error) bool {
	return hasCode(err, CodeIndexOptionsConflict) || hasCode(err, CodeIndexKeySpecsConflict)
}

// IsIndexNotFound reports whether err is a query failing for lack of a
// required index (e.g. $text without a text index).
func IsIndexNotFound(err error) bool {
	return hasCode(err, CodeIndexNotFound)
}

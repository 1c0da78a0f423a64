// Package clasperr defines the fixed error-code vocabulary shared across the
// engine. The HTTP transport (out of scope here) maps these onto status
// codes via HTTPStatus; callers within the engine compare against the
// exported sentinels with errors.Is.
package clasperr

import "fmt"

type Code string

const (
	FolderNotFound    Code = "FOLDER_NOT_FOUND"
	PermissionDenied  Code = "PERMISSION_DENIED"
	FileNotFound      Code = "FILE_NOT_FOUND"
	SaveFailed        Code = "SAVE_FAILED"
	NoCoverData       Code = "NO_COVER_DATA"
	RuleConflict      Code = "RULE_CONFLICT"
	InvalidType       Code = "INVALID_TYPE"
	RuleNotFound      Code = "RULE_NOT_FOUND"
	ScanNotFound      Code = "SCAN_NOT_FOUND"
	MoveFailed        Code = "MOVE_FAILED"
	LogNotFound       Code = "LOG_NOT_FOUND"
	AlreadyUndone     Code = "ALREADY_UNDONE"
	ExtensionConflict Code = "EXTENSION_CONFLICT"
	ExtensionNotFound Code = "EXTENSION_NOT_FOUND"
	CategoryConflict  Code = "CATEGORY_CONFLICT"
	CategoryNotFound  Code = "CATEGORY_NOT_FOUND"
)

var httpStatus = map[Code]int{
	FolderNotFound:    404,
	PermissionDenied:  403,
	FileNotFound:      404,
	SaveFailed:        500,
	NoCoverData:       404,
	RuleConflict:      409,
	InvalidType:       400,
	RuleNotFound:      404,
	ScanNotFound:      404,
	MoveFailed:        500,
	LogNotFound:       404,
	AlreadyUndone:     409,
	ExtensionConflict: 409,
	ExtensionNotFound: 404,
	CategoryConflict:  409,
	CategoryNotFound:  404,
}

// Error is the typed error every validation-kind failure in the engine
// returns. Environment/I-O/corruption failures (§7) are NOT represented as
// Error — they degrade silently or as plain wrapped errors, by design.
type Error struct {
	Code    Code
	Message string
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus reports the status code a future transport would use for this
// error. 500 is the default for any code not in the fixed table.
func (e *Error) HTTPStatus() int {
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return 500
}

// Is lets callers write errors.Is(err, clasperr.New(clasperr.RuleNotFound, ""))
// or, more commonly, compare codes directly via As + Code equality.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

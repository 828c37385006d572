package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var ptr *Errno
	if errors.As(err, &ptr) {
		return ptr.Code, err.Error()
	}
	var typed Errno
	if errors.As(err, &typed) {
		return typed.Code, err.Error()
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrConfigInvalid    = Errno{Code: 10002, Message: "Invalid configuration"}
)

// Beacon Errors (20000+)
var (
	ErrNodeQuery          = Errno{Code: 20101, Message: "node query failed"}
	ErrMalformedSnapshot  = Errno{Code: 20102, Message: "malformed chain snapshot"}
	ErrEmptySnapshotStore = Errno{Code: 20201, Message: "no chain snapshot available"}
	ErrDelivery           = Errno{Code: 20301, Message: "notification delivery failed"}
	ErrCyclePanic         = Errno{Code: 20401, Message: "detection cycle panicked"}
)

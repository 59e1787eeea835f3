package error

// GenericError is implemented by every application error so the recovery
// middleware and workflow boundaries can map them to a code and HTTP status.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}

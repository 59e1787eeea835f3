package utils

// ResponseData is the envelope used by every REST handler.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics with the given error so the recovery middleware can
// translate it into a proper HTTP response. Handlers stay flat this way.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}

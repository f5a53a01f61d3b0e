package response

// Response represents a standard API success format
type Response struct {
	Status     string      `json:"status"`      // always "success"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// ErrorResult is the envelope returned for every non-2xx response. The
// ErrorID correlates the response with the logged fault.
type ErrorResult struct {
	Messages       []string `json:"messages"`
	Source         string   `json:"source,omitempty"`
	Exception      string   `json:"exception,omitempty"`
	ErrorID        string   `json:"errorId"`
	SupportMessage string   `json:"supportMessage"`
	StatusCode     int      `json:"statusCode"`
}

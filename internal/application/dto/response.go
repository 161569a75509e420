// Package dto defines the request and response shapes of the HTTP API.
package dto

// APIResponse is the uniform response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Pagination `json:"meta,omitempty"`
}

// APIError carries the error code and message of a failed request.
type APIError struct {
	Code     string                 `json:"code"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Pagination describes the page of a list response.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// OK wraps data in a success envelope.
func OK(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// OKPage wraps a list page in a success envelope.
func OKPage(data interface{}, page, pageSize int, total int64) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Meta:    &Pagination{Page: page, PageSize: pageSize, Total: total},
	}
}

// Fail wraps an error in a failure envelope.
func Fail(code, message string, metadata map[string]interface{}) APIResponse {
	return APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message, Metadata: metadata},
	}
}

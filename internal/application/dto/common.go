package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// MessageResponse cuerpo de éxito simple.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

package models

// MessageResponse is the success body of write endpoints.
type MessageResponse struct {
	ResponseMessage string `json:"response_message" example:"New patient added."`
	ID              uint   `json:"id,omitempty" example:"1"`
}

type AuthResponse struct {
	ResponseMessage string `json:"response_message" example:"User authenticated."`
	Token           string `json:"token,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"Patient not found"`
	Error   string `json:"error" example:"patient 12: not found"`
}

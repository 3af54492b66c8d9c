package request

// LoginRequest is the request body for exchanging credentials for a token
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

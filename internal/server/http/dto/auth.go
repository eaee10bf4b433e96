package dto

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	ScopeID  string `json:"scope_id"`
}

// AuthRequest is the payload for login.
type AuthRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

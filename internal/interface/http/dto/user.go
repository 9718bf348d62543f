package dto

// RegisterRequest 注册请求
// username格式由领域层校验
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"reader"`
	Password string `json:"password" binding:"required,min=6,max=64" example:"secret123"`
	Email    string `json:"email" binding:"omitempty,email" example:"reader@example.com"`
}

// TokenRequest 获取Token
type TokenRequest struct {
	Username string `json:"username" binding:"required" example:"reader"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RefreshRequest 刷新Access Token
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

package dto

// RegisterRequest HTTP层注册请求
// 格式校验在这里做，密码强度等业务规则在领域服务里
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"password123"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50" example:"alice"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RefreshRequest 刷新Access Token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest 登出；带上 refresh_token 时一并作废
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RoleRequest 授予/撤销角色
type RoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin customer" example:"admin"`
}

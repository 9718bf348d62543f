package user

import (
	"time"
)

// User 用户实体（聚合根）
// 1. Username是登录标识，数据库唯一索引保证唯一
// 2. Password是bcrypt哈希值，不保存明文
// 3. 领域实体不依赖GORM tag
type User struct {
	ID        uint
	Username  string
	Email     string // 可选
	Password  string // bcrypt哈希值
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(username, hashedPassword, email string) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

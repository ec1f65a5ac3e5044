// Package models 定义数据模型
package models

import (
	"time"
)

// User 后台用户模型（租户内的管理员/销售）
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  int64     `gorm:"index;not null" json:"tenant_id"`
	Username  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Nickname  string    `gorm:"type:varchar(50);not null;default:''" json:"nickname"`
	Role      string    `gorm:"type:varchar(20);not null;default:'agent'" json:"role"`
	Status    int8      `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// UserRole 用户角色
const (
	UserRoleAdmin = "admin" // 租户管理员
	UserRoleAgent = "agent" // 销售/客服
)

// UserStatus 用户状态
const (
	UserStatusDisabled = 0 // 禁用
	UserStatusActive   = 1 // 正常
)

package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised by the timetable API.
type UserRole string

const (
	RoleSuperAdmin  UserRole = "SUPERADMIN"
	RoleSchoolAdmin UserRole = "SCHOOL_ADMIN"
	RoleTeacher     UserRole = "TEACHER"
	RoleParent      UserRole = "PARENT"
	RoleStudent     UserRole = "STUDENT"
)

// JWTClaims represents the payload of access tokens issued by the school backend.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	School string   `json:"school"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

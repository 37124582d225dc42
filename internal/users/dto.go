package users

import (
	"time"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Username      string  `json:"username" binding:"required,min=3,max=40"`
	Password      string  `json:"password" binding:"required,min=8"`
	Email         string  `json:"email" binding:"omitempty,email"`
	Role          string  `json:"role" binding:"required"`
	RCExtensionID *string `json:"rcExtensionId"`
}

type UpdateUserRequest struct {
	Username      *string `json:"username" binding:"omitempty,min=3,max=40"`
	Role          *string `json:"role"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Password      *string `json:"password" binding:"omitempty,min=8"`
	RCExtensionID *string `json:"rcExtensionId"`
}

type SetProgressRequest struct {
	Index int `json:"index"`
}

type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	RCExtensionID  *string    `json:"rcExtensionId"`
	LastActivityAt *time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type ProgressResponse struct {
	CurrentIndex int `json:"currentIndex"`
	Total        int `json:"total"`
}

func ToUserResponse(user User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role,
		RCExtensionID:  user.RCExtensionID,
		LastActivityAt: user.LastActivityAt,
		CreatedAt:      user.CreatedAt,
	}
}

func ToUserResponses(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, ToUserResponse(user))
	}
	return out
}

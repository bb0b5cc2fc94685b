package models

import "time"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type PostRequest struct {
	Title      string     `json:"title" validate:"required,min=1,max=255"`
	Slug       string     `json:"slug" validate:"required,max=255"`
	Content    string     `json:"content" validate:"required"`
	Status     PostStatus `json:"status" validate:"required,oneof=draft published"`
	CategoryID uint       `json:"category_id" validate:"required"`
}

type PostResponse struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Content      string     `json:"content"`
	Status       PostStatus `json:"status"`
	CategoryID   uint       `json:"category_id"`
	CategoryName string     `json:"category_name"`
	AuthorID     uint       `json:"author_id"`
	AuthorName   string     `json:"author_name"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewPostResponse expects Category and Author to be loaded.
func NewPostResponse(p *Post) PostResponse {
	return PostResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Content:      p.Content,
		Status:       p.Status,
		CategoryID:   p.CategoryID,
		CategoryName: p.Category.Name,
		AuthorID:     p.AuthorID,
		AuthorName:   p.Author.Name,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type PostListParams struct {
	Status     string `form:"status"`
	CategoryID uint   `form:"category_id"`
	Query      string `form:"q"`
	Page       int    `form:"page,default=1"`
	Size       int    `form:"size,default=10"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize clamps paging values into their accepted ranges.
func (p *PostListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
}

type PostPage struct {
	Posts []PostResponse
	Total int64
	Page  int
	Size  int
}

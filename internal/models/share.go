package models

type SharePostRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	To       string `json:"to" form:"to"`
	Comments string `json:"comments" form:"comments"`
}

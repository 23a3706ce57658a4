package dto

// RegisterReq represents the POST /registro form.
// Email is limited to the users.email column size.
type RegisterReq struct {
	Email    string `form:"email" binding:"required,max=100"`
	Password string `form:"password" binding:"required"`
}

package dto

// RegisterBookRequest HTTP图书登记请求
type RegisterBookRequest struct {
	ISBN        string `json:"isbn" binding:"required" example:"9787115428028"`
	Title       string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author      string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	TotalCopies int    `json:"total_copies" binding:"min=0" example:"3"`
}

// RegisterMemberRequest HTTP会员登记请求
type RegisterMemberRequest struct {
	Name  string `json:"name" binding:"required,max=100" example:"张三"`
	Email string `json:"email" binding:"required,email" example:"zhangsan@example.com"`
}

package dto

// IDPath 路径参数 :id
type IDPath struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

// LoanBookRequest HTTP借出请求
type LoanBookRequest struct {
	MemberID uint `json:"member_id" binding:"required,min=1" example:"1"`
}

// LoanBookResponse HTTP借出响应
type LoanBookResponse struct {
	LoanID          uint   `json:"loan_id" example:"1"`
	BookID          uint   `json:"book_id" example:"1"`
	MemberID        uint   `json:"member_id" example:"1"`
	LoanDate        string `json:"loan_date" example:"2024-03-01T09:30:00Z"`
	DueDate         string `json:"due_date" example:"2024-03-15"`
	AvailableCopies int    `json:"available_copies" example:"0"`
}

// ReturnBookRequest HTTP归还请求
type ReturnBookRequest struct {
	MemberID uint `json:"member_id" binding:"required,min=1" example:"1"`
}

// ReturnBookResponse HTTP归还响应
type ReturnBookResponse struct {
	LoanID          uint   `json:"loan_id" example:"1"`
	ReturnDate      string `json:"return_date" example:"2024-03-04T10:00:00Z"`
	Overdue         bool   `json:"overdue" example:"false"`
	AvailableCopies int    `json:"available_copies" example:"1"`
}

// ExtendDueDateRequest HTTP续借请求
// 负数天数交给领域校验,返回40902而不是绑定错误
type ExtendDueDateRequest struct {
	AdditionalDays *int `json:"additional_days" binding:"required" example:"7"`
}

// ExtendDueDateResponse HTTP续借响应
type ExtendDueDateResponse struct {
	LoanID         uint `json:"loan_id" example:"1"`
	AdditionalDays int  `json:"additional_days" example:"7"`
}

// 日期格式:应还日期只有日期部分
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05Z07:00"
)

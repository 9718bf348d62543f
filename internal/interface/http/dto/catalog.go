package dto

// AuthorRequest 创建/更新作者
type AuthorRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"Taras Shevchenko"`
}

// BookRequest 创建/更新图书(PUT为全量更新)
// 业务规则(长度、非负)由领域层校验，这里只检查必填
type BookRequest struct {
	Title           string `json:"title" binding:"required" example:"Kobzar"`
	AuthorID        uint   `json:"author" binding:"required" example:"1"`
	Genre           string `json:"genre" binding:"required" example:"Poetry"`
	PublicationDate string `json:"publication_date" binding:"required" example:"1840-04-18"`
	Price           int64  `json:"price" example:"25000"` // 最小货币单位(копійка)
	Quantity        int    `json:"quantity" example:"10"`
}

// ListQuery 通用分页查询参数
type ListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Search   string `form:"search" binding:"omitempty,max=100" example:"kobzar"`
	Ordering string `form:"ordering" binding:"omitempty,max=50" example:"-price"`
}

// ListBooksQuery 图书列表查询参数
type ListBooksQuery struct {
	ListQuery
	Genre    string `form:"genre" binding:"omitempty,max=100" example:"Fiction"`
	AuthorID uint   `form:"author_id" example:"1"`
}

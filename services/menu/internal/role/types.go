package role

// CreateRequest 创建角色请求
type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Code        string `json:"code" validate:"required,max=50"`
	Status      int8   `json:"status" validate:"omitempty,oneof=1 2"`
	Sort        int    `json:"sort" validate:"gte=0"`
	Description string `json:"description" validate:"max=255"`
}

// UpdateRequest 更新角色请求，编码创建后不可修改
type UpdateRequest struct {
	Name        string  `json:"name" validate:"max=50"`
	Status      int8    `json:"status" validate:"omitempty,oneof=1 2"`
	Sort        *int    `json:"sort" validate:"omitempty,gte=0"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// ListRequest 角色列表请求
type ListRequest struct {
	Name   string `query:"name"`
	Code   string `query:"code"`
	Status *int8  `query:"status"`
}

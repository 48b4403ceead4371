package menu

// CreateRequest 创建菜单请求
type CreateRequest struct {
	ParentID int64             `json:"parentId" validate:"gte=0"`
	Key      string            `json:"key" validate:"required,max=100"`
	Title    string            `json:"title" validate:"required,max=50"`
	Titles   map[string]string `json:"titles" validate:"omitempty,dive,keys,required,max=35,endkeys,required,max=50"`
	Path     string            `json:"path" validate:"max=255"`
	Icon     string            `json:"icon" validate:"max=50"`
	Type     int8              `json:"type" validate:"omitempty,oneof=1 2 3"`
	Visible  int8              `json:"visible" validate:"omitempty,oneof=1 2"`
	Status   int8              `json:"status" validate:"omitempty,oneof=1 2"`
	Sort     int               `json:"sort" validate:"gte=0"`
}

// UpdateRequest 更新菜单请求，未提供的字段保持不变
type UpdateRequest struct {
	ParentID *int64            `json:"parentId" validate:"omitempty,gte=0"`
	Key      string            `json:"key" validate:"max=100"`
	Title    string            `json:"title" validate:"max=50"`
	Titles   map[string]string `json:"titles" validate:"omitempty,dive,keys,required,max=35,endkeys,required,max=50"`
	Path     *string           `json:"path" validate:"omitempty,max=255"`
	Icon     *string           `json:"icon" validate:"omitempty,max=50"`
	Type     int8              `json:"type" validate:"omitempty,oneof=1 2 3"`
	Visible  int8              `json:"visible" validate:"omitempty,oneof=1 2"`
	Status   int8              `json:"status" validate:"omitempty,oneof=1 2"`
	Sort     *int              `json:"sort" validate:"omitempty,gte=0"`
}

// ListRequest 菜单列表请求
type ListRequest struct {
	Name     string `query:"name"`
	Status   *int8  `query:"status"`
	ParentID *int64 `query:"parentId"`
}

// TreeRequest 菜单树请求
type TreeRequest struct {
	Locale string `query:"locale"`
}

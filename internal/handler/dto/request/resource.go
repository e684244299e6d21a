package request

type CreateResourceRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

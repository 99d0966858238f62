package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// RequestMeta carries client metadata recorded in audit logs.
type RequestMeta struct {
	IP        string
	UserAgent string
}

package dto

type AdminCreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type AdminUpdateUserRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=user admin"`
}

type AdminDashboardResponse struct {
	TotalUsers        int64   `json:"total_users"`
	TotalAssistants   int64   `json:"total_assistants"`
	ActiveSubscribers int64   `json:"active_subscribers"`
	TotalCalls        int64   `json:"total_calls"`
	TotalCallMinutes  int64   `json:"total_call_minutes"`
	TotalRevenue      float64 `json:"total_revenue"`
}

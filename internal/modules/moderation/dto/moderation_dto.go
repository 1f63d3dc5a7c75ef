package dto

type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student admin"`
}

type BanRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type WarnRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type TimeoutRequest struct {
	// Duration in hours; only the fixed ladder is accepted.
	Hours  int    `json:"hours" binding:"required,oneof=1 6 12 24 72 168"`
	Reason string `json:"reason" binding:"required,max=500"`
}

package model

// Analytics is the aggregate snapshot served by the inventory backend.
type Analytics struct {
	TotalDevices    int           `json:"totalDevices"`
	ActiveDevices   int           `json:"activeDevices"`
	TotalSchools    int           `json:"totalSchools"`
	ActiveSchools   int           `json:"activeSchools"`
	TotalUsers      int           `json:"totalUsers"`
	ActiveUsers     int           `json:"activeUsers"`
	DevicesByStatus []StatusCount `json:"devicesByStatus"`
	DevicesBySchool []SchoolCount `json:"devicesBySchool"`
	UsersByRole     []RoleCount   `json:"usersByRole"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type SchoolCount struct {
	SchoolName string `json:"schoolName"`
	Count      int    `json:"count"`
}

type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

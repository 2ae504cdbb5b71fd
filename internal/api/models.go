package api

// ServiceStatus describes one systemd unit as reported by the appliance.
type ServiceStatus struct {
	Name    string `json:"name"`
	Active  bool   `json:"active"`
	Enabled bool   `json:"enabled"`
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemConfig is the appliance-wide console configuration.
type SystemConfig struct {
	StatusRefreshInterval int `json:"status_refresh_interval"` // seconds
}

// ServerMode reports whether the backend runs multi-tenant and which
// config groups it serves.
type ServerMode struct {
	Enabled      bool     `json:"enabled"`
	ConfigGroups []string `json:"config_groups"`
}

// ActionResult is the response of a service action request.
type ActionResult struct {
	Message string `json:"message"`
}

// DeployResult is the response of a deployment request.
type DeployResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	DeployedCount int    `json:"deployed_count,omitempty"`
}

// actionRequest is the body of POST /api/systemd/action.
type actionRequest struct {
	Service string `json:"service"`
	Action  string `json:"action"`
}

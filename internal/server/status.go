package server

// Version is reported by the status endpoint; set at build time
var Version = "dev"

// ServiceName identifies this server in status responses
const ServiceName = "site-router"

// HealthResponse is the response from the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the response from the status endpoint
type StatusResponse struct {
	Status        string        `json:"status"`
	Service       string        `json:"service"`
	Version       string        `json:"version"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Routing       RoutingStatus `json:"routing"`
	Capabilities  []string      `json:"capabilities,omitempty"`
}

// RoutingStatus describes the site being served
type RoutingStatus struct {
	APIDir   string `json:"api_dir"`
	SSRDir   string `json:"ssr_dir"`
	BuildDir string `json:"build_dir"`
	Rewrites int    `json:"rewrites"`
}

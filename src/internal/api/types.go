package api

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// ResolveRequest is the body of POST /api/v1/resolve.
type ResolveRequest struct {
	Addresses []string `json:"addresses"`
	Exclude   []string `json:"exclude,omitempty"`
}

// ResolveResponse lists the resolved addresses in order.
type ResolveResponse struct {
	Addresses []string `json:"addresses"`
	Count     int      `json:"count"`
	// Warnings holds every target that could not be resolved.
	Warnings []string `json:"warnings"`
}

// ResolversResponse describes the resolver handle used for hostname fallback.
type ResolversResponse struct {
	Origin      string   `json:"origin"` // "custom", "system", "public"
	Nameservers []string `json:"nameservers"`
}

// HealthResponse returns liveness and build information.
type HealthResponse struct {
	Status  string      `json:"status"`
	Version VersionInfo `json:"version"`
}

// VersionInfo contains build version information.
type VersionInfo struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

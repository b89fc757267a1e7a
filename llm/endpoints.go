package llm

import (
	"fmt"
	"net/url"
	"strings"
)

// Environment selects the backend deployment layout.
type Environment string

const (
	// EnvDev serves routes at the root of the base URL
	EnvDev Environment = "DEV"
	// EnvProd serves routes under /api behind the API gateway
	EnvProd Environment = "PROD"
)

// ParseEnvironment converts a string to Environment, returning error if invalid
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "PROD", "PRODUCTION":
		return EnvProd, nil
	case "DEV", "DEVELOPMENT":
		return EnvDev, nil
	default:
		return "", fmt.Errorf("invalid environment %q: must be DEV or PROD", s)
	}
}

// Route names a backend endpoint.
type Route string

const (
	RouteChat      Route = "chat"
	RouteAudioChat Route = "chat_succint" // terse replies for spoken output
	RouteAnalyze   Route = "analyze"
)

// ParseRoute converts a string to Route, returning error if invalid
func ParseRoute(s string) (Route, error) {
	switch Route(strings.ToLower(strings.TrimSpace(s))) {
	case "", RouteChat:
		return RouteChat, nil
	case RouteAudioChat, "audio":
		return RouteAudioChat, nil
	case RouteAnalyze:
		return RouteAnalyze, nil
	default:
		return "", fmt.Errorf("invalid route %q: must be chat, audio or analyze", s)
	}
}

// Endpoints resolves route URLs for one backend deployment.
type Endpoints struct {
	BaseURL     string
	Environment Environment
}

// URL returns the absolute URL of route.
func (e Endpoints) URL(route Route) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(e.BaseURL), "/")
	if base == "" {
		return "", fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", e.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", e.BaseURL)
	}

	if e.Environment == EnvDev {
		return base + "/" + string(route), nil
	}
	return base + "/api/" + string(route), nil
}

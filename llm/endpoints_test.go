package llm

import "testing"

func TestEndpointsURL(t *testing.T) {
	tests := []struct {
		base  string
		env   Environment
		route Route
		want  string
	}{
		{"https://api.example.com", EnvProd, RouteChat, "https://api.example.com/api/chat"},
		{"https://api.example.com/", EnvProd, RouteAudioChat, "https://api.example.com/api/chat_succint"},
		{"http://localhost:8080", EnvDev, RouteChat, "http://localhost:8080/chat"},
		{"http://localhost:8080/", EnvDev, RouteAnalyze, "http://localhost:8080/analyze"},
		{"https://api.example.com", "", RouteAnalyze, "https://api.example.com/api/analyze"},
	}
	for _, tt := range tests {
		got, err := Endpoints{BaseURL: tt.base, Environment: tt.env}.URL(tt.route)
		if err != nil {
			t.Errorf("URL(%s, %s, %s) error: %v", tt.base, tt.env, tt.route, err)
			continue
		}
		if got != tt.want {
			t.Errorf("URL(%s, %s, %s) = %s, want %s", tt.base, tt.env, tt.route, got, tt.want)
		}
	}
}

func TestEndpointsURLInvalid(t *testing.T) {
	for _, base := range []string{"", "   ", "ftp://example.com", "example.com", "://bad"} {
		if _, err := (Endpoints{BaseURL: base}).URL(RouteChat); err == nil {
			t.Errorf("URL with base %q should fail", base)
		}
	}
}

func TestParseEnvironment(t *testing.T) {
	cases := map[string]Environment{
		"":           EnvProd,
		"prod":       EnvProd,
		"PRODUCTION": EnvProd,
		"dev":        EnvDev,
		" DEV ":      EnvDev,
	}
	for in, want := range cases {
		got, err := ParseEnvironment(in)
		if err != nil || got != want {
			t.Errorf("ParseEnvironment(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseEnvironment("staging"); err == nil {
		t.Error("ParseEnvironment(staging) should fail")
	}
}

func TestParseRoute(t *testing.T) {
	cases := map[string]Route{
		"":             RouteChat,
		"chat":         RouteChat,
		"audio":        RouteAudioChat,
		"chat_succint": RouteAudioChat,
		"Analyze":      RouteAnalyze,
	}
	for in, want := range cases {
		got, err := ParseRoute(in)
		if err != nil || got != want {
			t.Errorf("ParseRoute(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseRoute("stream"); err == nil {
		t.Error("ParseRoute(stream) should fail")
	}
}

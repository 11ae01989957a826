package rpc

import (
	"net/http"
	"strings"
)

type AuthType string

const (
	AuthTypeHeader AuthType = "header"
	AuthTypeQuery  AuthType = "query"
)

// AuthConfig holds authentication configuration for RPC providers that
// expect an API key either as a header or as a query parameter.
type AuthConfig struct {
	Type  AuthType `json:"type"  yaml:"type"  validate:"omitempty,oneof=header query"`
	Key   string   `json:"key"   yaml:"key"   validate:"required_with=Value"`
	Value string   `json:"value" yaml:"value"`
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil || a.Key == "" {
		return
	}
	switch a.Type {
	case AuthTypeQuery:
		q := req.URL.Query()
		q.Set(a.Key, a.Value)
		req.URL.RawQuery = q.Encode()
	default:
		if strings.EqualFold(a.Key, "authorization") && !strings.Contains(a.Value, " ") {
			req.Header.Set("Authorization", "Bearer "+a.Value)
			return
		}
		req.Header.Set(a.Key, a.Value)
	}
}

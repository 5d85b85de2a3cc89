package model

import "strings"

// Scope tokens understood by the server.
const (
	ScopeRead              = "read"
	ScopeWrite             = "write"
	ScopeProjectsRead      = "projects:read"
	ScopeProjectsWrite     = "projects:write"
	ScopeFilesRead         = "files:read"
	ScopeFilesWrite        = "files:write"
	ScopeNotificationsSend = "notifications:send"
	ScopeProfile           = "profile"
	ScopePhone             = "phone"
)

// DefaultScope is requested when the consent request omits scope.
const DefaultScope = ScopeRead

var scopeDescriptions = map[string]string{
	ScopeRead:              "View your profile and project information",
	ScopeWrite:             "Create and modify projects on your behalf",
	ScopeProjectsRead:      "View your projects and project details",
	ScopeProjectsWrite:     "Create, update, and delete projects",
	ScopeFilesRead:         "View files and assets in your projects",
	ScopeFilesWrite:        "Upload and manage files in your projects",
	ScopeNotificationsSend: "Send notifications to you",
	ScopeProfile:           "View your name and profile picture",
	ScopePhone:             "View your phone number",
}

// ScopeSet is a parsed space-separated scope string.
type ScopeSet []string

// ParseScope splits a space-separated scope string, dropping empty entries.
func ParseScope(scope string) ScopeSet {
	return ScopeSet(strings.Fields(scope))
}

// Has reports whether the set contains any of the given tokens.
func (s ScopeSet) Has(tokens ...string) bool {
	for _, have := range s {
		for _, want := range tokens {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Descriptions returns a human-readable line per scope token.
func (s ScopeSet) Descriptions() []string {
	out := make([]string, 0, len(s))
	for _, token := range s {
		if d, ok := scopeDescriptions[token]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, "Access to "+token)
	}
	return out
}

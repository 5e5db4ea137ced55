package token

import "strings"

// Claims is the decoded claim set of a verified token, exactly as decoded.
type Claims map[string]any

// PermissionsClaim is the claim carrying granted permission strings.
const PermissionsClaim = "permissions"

// Subject returns the "sub" claim, or "" if absent.
func (c Claims) Subject() string {
	sub, _ := c["sub"].(string)
	return sub
}

// Permissions returns the granted permissions and whether the claim exists.
// A JSON array yields its string members; a string is split on whitespace;
// any other value is present but grants nothing.
func (c Claims) Permissions() ([]string, bool) {
	raw, ok := c[PermissionsClaim]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		return strings.Fields(v), true
	default:
		return []string{}, true
	}
}

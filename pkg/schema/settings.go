package schema

// DefaultAutoRefresh is the refresh interval, in seconds, of a fresh install.
const DefaultAutoRefresh = 60

// Settings is the persisted adminSecureSettings blob.
type Settings struct {
	NetlifyToken string `json:"netlifyToken"`
	FormID       string `json:"formId"`
	AutoRefresh  int    `json:"autoRefresh"`
}

// Configured reports whether both credentials are present.
func (s Settings) Configured() bool {
	return s.NetlifyToken != "" && s.FormID != ""
}

// MaskedToken hides all but the last four characters of the token.
func (s Settings) MaskedToken() string {
	if s.NetlifyToken == "" {
		return ""
	}
	n := len(s.NetlifyToken)
	if n <= 4 {
		return "••••"
	}
	return "••••••••" + s.NetlifyToken[n-4:]
}

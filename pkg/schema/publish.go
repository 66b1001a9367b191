package schema

// Action is the operation requested from the publish endpoint.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// PublishRequest is the body accepted by the publish endpoint.
// Profile is a free-form field map so that updates can be partial.
type PublishRequest struct {
	Profile map[string]any `json:"profile"`
	Role    Role           `json:"role"`
	Action  Action         `json:"action,omitempty"`
}

// PublishResult is the success body of the publish endpoint.
type PublishResult struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	Profile        *Profile `json:"profile,omitempty"`
	DeletedProfile *Profile `json:"deletedProfile,omitempty"`
	TotalProfiles  *int     `json:"totalProfiles,omitempty"`
}

// ErrorResponse is the failure body of the publish endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

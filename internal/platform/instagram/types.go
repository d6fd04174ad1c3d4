package instagram

// session is the persisted login state. Restoring it skips the password
// login and keeps Instagram from flagging the account for new-device
// challenges on every run.
type session struct {
	Username  string            `json:"username"`
	UserID    string            `json:"user_id"`
	UUID      string            `json:"uuid"`
	DeviceID  string            `json:"device_id"`
	UserAgent string            `json:"user_agent"`
	CSRFToken string            `json:"csrf_token"`
	Cookies   map[string]string `json:"cookies"`
}

// apiResponse is the envelope common to private API endpoints.
type apiResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
}

type loginResponse struct {
	apiResponse
	LoggedInUser struct {
		PK       int64  `json:"pk"`
		Username string `json:"username"`
	} `json:"logged_in_user"`
}

type configureResponse struct {
	apiResponse
	Media struct {
		ID   string `json:"id"`
		PK   int64  `json:"pk"`
		Code string `json:"code"`
	} `json:"media"`
}

type uploadResponse struct {
	apiResponse
	UploadID string `json:"upload_id"`
}

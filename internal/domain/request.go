package domain

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the backend reply to a successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Municipality string `json:"municipality"`
	Role         string `json:"role"`
}

// ResetPasswordRequest is the body of POST /reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Answer      string `json:"answer"`
	NewPassword string `json:"newPassword"`
}

// Upload is an image attached to a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewReport is a citizen report submission.
type NewReport struct {
	Image   Upload
	Lat     float64
	Lng     float64
	Address string
}

// Prediction is the classification result for an image.
type Prediction struct {
	PotholeCount int    `json:"pothole_count"`
	ReportID     string `json:"report_id,omitempty"`
}

// Package backend is the HTTP client for the external report and auth service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xiaot623/potholefix/internal/domain"
)

// Client talks to the report backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backend client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// errorBody is the error envelope returned by the backend. Older
// endpoints answer with "error", newer ones with "message".
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Login exchanges credentials for a session.
// POST /login
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", "", req, &resp, true); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response without token: %w", domain.ErrAuthenticationFailed)
	}
	return &resp, nil
}

// Signup creates an account.
// POST /signup
func (c *Client) Signup(ctx context.Context, req domain.SignupRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/signup", "", req, nil, false)
}

// ResetPassword sets a new password after the security question.
// POST /reset-password
func (c *Client) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/reset-password", "", req, nil, true)
}

// ListReportsByUser returns the reports submitted by a citizen.
// GET /reports?user_id=<id>
func (c *Client) ListReportsByUser(ctx context.Context, token, userID string) ([]domain.Report, error) {
	var reports []domain.Report
	path := "/reports?" + url.Values{"user_id": {userID}}.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &reports, false); err != nil {
		return nil, err
	}
	return reports, nil
}

// ListReportSummaries returns id and status of a citizen's reports.
func (c *Client) ListReportSummaries(ctx context.Context, token, userID string) ([]domain.ReportSummary, error) {
	var summaries []domain.ReportSummary
	path := "/reports?" + url.Values{"user_id": {userID}}.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &summaries, false); err != nil {
		return nil, err
	}
	return summaries, nil
}

// ListReportsByRole returns the reports visible to an admin role. The
// backend infers the region from the role.
// GET /reports?role=<role>
func (c *Client) ListReportsByRole(ctx context.Context, token string, role domain.Role) ([]domain.Report, error) {
	var reports []domain.Report
	path := "/reports?" + url.Values{"role": {role.String()}}.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &reports, false); err != nil {
		return nil, err
	}
	return reports, nil
}

// DeleteReport removes a citizen's own report.
// DELETE /reports/<id>
func (c *Client) DeleteReport(ctx context.Context, token, reportID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/reports/"+url.PathEscape(reportID), token, nil, nil, false)
}

// ResolveReport marks a report Resolved, optionally with a repair photo
// that the backend audits before accepting.
// PATCH /update_status/<id>
func (c *Client) ResolveReport(ctx context.Context, token, reportID string, photo *domain.Upload) error {
	path := "/update_status/" + url.PathEscape(reportID)
	if photo == nil {
		return c.doJSON(ctx, http.MethodPatch, path, token, nil, nil, false)
	}

	form := newMultipartForm()
	form.file("resolved_image", *photo)
	return c.doMultipart(ctx, http.MethodPatch, path, token, form, nil)
}

// Predict classifies an image and returns the defect count.
// POST /predict
func (c *Client) Predict(ctx context.Context, token string, image domain.Upload) (*domain.Prediction, error) {
	form := newMultipartForm()
	form.file("image", image)

	var resp domain.Prediction
	if err := c.doMultipart(ctx, http.MethodPost, "/predict", token, form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitReport creates a report on behalf of the session's citizen.
// POST /report
func (c *Client) SubmitReport(ctx context.Context, sess domain.Session, report domain.NewReport) (*domain.Prediction, error) {
	form := newMultipartForm()
	form.file("image", report.Image)
	form.field("user_id", sess.UserID)
	form.field("user_name", sess.DisplayName)
	form.field("latitude", strconv.FormatFloat(report.Lat, 'f', -1, 64))
	form.field("longitude", strconv.FormatFloat(report.Lng, 'f', -1, 64))
	form.field("address", report.Address)

	var resp domain.Prediction
	if err := c.doMultipart(ctx, http.MethodPost, "/report", sess.Token, form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out interface{}, credentials bool) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return c.do(httpReq, token, out, credentials)
}

func (c *Client) doMultipart(ctx context.Context, method, path, token string, form *multipartForm, out interface{}) error {
	contentType, body, err := form.encode()
	if err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	return c.do(httpReq, token, out, false)
}

func (c *Client) do(httpReq *http.Request, token string, out interface{}, credentials bool) error {
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", httpReq.Method, httpReq.URL.Path, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp.StatusCode, respBody, credentials)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w: %v", domain.ErrNetwork, err)
	}
	return nil
}

// classify maps a non-2xx reply onto the error taxonomy. credentials marks
// endpoints where 401/403 means the submitted credentials were wrong rather
// than the session being gone.
func classify(status int, body []byte, credentials bool) error {
	var eb errorBody
	message := ""
	if err := json.Unmarshal(body, &eb); err == nil {
		message = eb.Message
		if message == "" {
			message = eb.Error
		}
	}

	var kind error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if credentials {
			kind = domain.ErrAuthenticationFailed
		} else {
			kind = domain.ErrSessionStale
		}
	case status >= 500:
		kind = domain.ErrNetwork
	default:
		if credentials && status == http.StatusNotFound {
			kind = domain.ErrAuthenticationFailed
		} else {
			kind = domain.ErrServerValidation
		}
	}

	return &domain.BackendError{Status: status, Message: message, Err: kind}
}

type multipartForm struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	name   string
	upload domain.Upload
}

func newMultipartForm() *multipartForm {
	return &multipartForm{}
}

func (f *multipartForm) field(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

func (f *multipartForm) file(name string, upload domain.Upload) {
	f.files = append(f.files, formFile{name: name, upload: upload})
}

func (f *multipartForm) encode() (string, io.Reader, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, fl := range f.files {
		filename := fl.upload.Filename
		if filename == "" {
			filename = fl.name
		}
		contentType := fl.upload.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fl.name, filename))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return "", nil, err
		}
		if _, err := part.Write(fl.upload.Data); err != nil {
			return "", nil, err
		}
	}
	for _, fd := range f.fields {
		if err := w.WriteField(fd.name, fd.value); err != nil {
			return "", nil, err
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), &buf, nil
}

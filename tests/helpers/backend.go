package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xiaot623/potholefix/internal/domain"
)

// Accounts known to the fake backend. Every password is "secret".
var Accounts = map[string]domain.LoginResponse{
	"asha@example.com":  {Token: "tok-citizen", Role: "citizen", UserID: "u1", Name: "Asha"},
	"ravi@example.com":  {Token: "tok-legacy", Role: "user", UserID: "u2", Name: "Ravi"},
	"tmc@example.com":   {Token: "tok-admin", Role: "admin-tmc", Name: "TMC Officer"},
	"weird@example.com": {Token: "tok-weird", Role: "superuser", UserID: "u3", Name: "Weird"},
}

// CitizenReports is what the fake backend lists for a citizen, in the shape
// Flask produces: HTTP dates and string coordinates.
const CitizenReports = `[
	{"_id":"r1","status":"Pending","pothole_count":2,"coordinates":{"lat":"19.2183","lng":"72.9781"},"created_at":"Wed, 15 Oct 2026 02:19:00 GMT"},
	{"_id":"r2","status":"Resolved","pothole_count":1,"coordinates":{"lat":19.2,"lng":72.97},"created_at":"Tue, 14 Oct 2026 09:00:00 GMT"},
	{"_id":"r3","status":"Resolved","created_at":null}
]`

// NewFakeBackend starts a server that answers like the report service.
// Citizens own reports [Pending, Resolved, Resolved]; the TMC region has a
// single pending report; repair photo audits always fail.
func NewFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		acct, ok := Accounts[req.Email]
		if !ok || req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(acct)
	})
	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		var req domain.SignupRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if (req.Municipality != "TMC" && req.Municipality != "BMC" && req.Municipality != "NMMC") || req.Role != "user" {
			writeJSON(w, http.StatusBadRequest, `{"message":"unexpected signup fields"}`)
			return
		}
		writeJSON(w, http.StatusCreated, `{"message":"created"}`)
	})
	mux.HandleFunc("/reset-password", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"updated"}`)
	})
	mux.HandleFunc("/reports", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("role") == "admin-tmc" {
			writeJSON(w, http.StatusOK, `[{"_id":"r9","status":"Pending","municipality":"TMC","created_at":"Mon, 13 Oct 2026 18:45:10 GMT"}]`)
			return
		}
		writeJSON(w, http.StatusOK, CitizenReports)
	})
	mux.HandleFunc("/reports/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, `{"message":"deleted"}`)
	})
	mux.HandleFunc("/update_status/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeJSON(w, http.StatusBadRequest, `{"error":"AI Audit failed: potholes still detected"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"message":"resolved"}`)
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"pothole_count":3}`)
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil || r.FormValue("user_id") == "" {
			writeJSON(w, http.StatusBadRequest, `{"message":"bad form"}`)
			return
		}
		writeJSON(w, http.StatusCreated, `{"pothole_count":2,"report_id":"r10"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

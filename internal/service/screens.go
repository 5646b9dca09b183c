package service

import (
	"context"

	"github.com/xiaot623/potholefix/internal/domain"
)

// ScreenView is the descriptor a browser renders for one screen.
type ScreenView struct {
	Screen  string           `json:"screen"`
	Path    string           `json:"path"`
	Nav     []domain.NavLink `json:"nav,omitempty"`
	Badge   *int             `json:"badge,omitempty"`
	Name    string           `json:"name,omitempty"`
	Region  string           `json:"region,omitempty"`
	Payload interface{}      `json:"payload,omitempty"`
}

// HistoryPayload lists a citizen's own reports.
type HistoryPayload struct {
	Reports []domain.Report     `json:"reports"`
	Totals  domain.ReportTotals `json:"totals"`
}

// DashboardPayload lists the reports of an admin's region.
type DashboardPayload struct {
	Region  string              `json:"region"`
	Reports []domain.Report     `json:"reports"`
	Totals  domain.ReportTotals `json:"totals"`
}

// ReportFormPayload describes the report submission form.
type ReportFormPayload struct {
	Fields []string `json:"fields"`
}

// SignupPayload lists the municipalities an account can belong to.
type SignupPayload struct {
	Municipalities []string `json:"municipalities"`
}

var reportFormFields = []string{"image", "latitude", "longitude", "address"}

// Screen builds the descriptor of a screen the guard has allowed for sess.
// Citizen screens make sure the browser's notification task is running.
func (s *Service) Screen(ctx context.Context, browserID string, sess domain.Session, screen domain.Screen) (*ScreenView, error) {
	view := &ScreenView{Screen: screen.Name, Path: screen.Path}

	switch screen.Path {
	case domain.PathReport:
		s.poller.Start(browserID, sess)
		view.Payload = ReportFormPayload{Fields: reportFormFields}

	case domain.PathHistory:
		s.poller.Start(browserID, sess)
		payload := HistoryPayload{Reports: []domain.Report{}}
		if sess.UserID != "" {
			reports, err := s.backend.ListReportsByUser(ctx, sess.Token, sess.UserID)
			if err != nil {
				return nil, err
			}
			if reports != nil {
				payload.Reports = reports
			}
		}
		payload.Totals = domain.Totals(payload.Reports)
		view.Payload = payload

	case domain.PathDashboard:
		reports, err := s.backend.ListReportsByRole(ctx, sess.Token, sess.Role)
		if err != nil {
			return nil, err
		}
		if reports == nil {
			reports = []domain.Report{}
		}
		view.Payload = DashboardPayload{
			Region:  sess.Role.RegionLabel(),
			Reports: reports,
			Totals:  domain.Totals(reports),
		}

	case domain.PathSignup:
		municipalities := make([]string, len(domain.Regions))
		for i, r := range domain.Regions {
			municipalities[i] = r.Label()
		}
		view.Payload = SignupPayload{Municipalities: municipalities}
	}

	if !sess.IsEmpty() {
		view.Nav = domain.Navigation(sess.Role, screen.Path)
		view.Name = sess.DisplayName
		view.Region = sess.Role.RegionLabel()
		if count, ok := s.poller.Count(browserID); ok {
			view.Badge = &count
		}
	}

	return view, nil
}

package service

import (
	"context"
	"strings"

	"github.com/xiaot623/potholefix/internal/domain"
)

// Predict asks the classifier how many potholes an image shows.
func (s *Service) Predict(ctx context.Context, sess domain.Session, image domain.Upload) (*domain.Prediction, error) {
	if len(image.Data) == 0 {
		return nil, domain.Invalid("an image is required")
	}
	return s.backend.Predict(ctx, sess.Token, image)
}

// SubmitReport files a report for the session's citizen. The reporter's
// id and name always come from the session, never from the request.
func (s *Service) SubmitReport(ctx context.Context, sess domain.Session, report domain.NewReport) (*domain.Prediction, error) {
	if len(report.Image.Data) == 0 || (report.Lat == 0 && report.Lng == 0) {
		return nil, domain.Invalid("please provide both an evidence photo and a location")
	}
	if report.Lat < -90 || report.Lat > 90 || report.Lng < -180 || report.Lng > 180 {
		return nil, domain.Invalid("location is out of range")
	}
	report.Address = strings.TrimSpace(report.Address)
	return s.backend.SubmitReport(ctx, sess, report)
}

// DeleteReport removes one of the citizen's reports.
func (s *Service) DeleteReport(ctx context.Context, sess domain.Session, reportID string) error {
	if reportID == "" {
		return domain.Invalid("report id is required")
	}
	return s.backend.DeleteReport(ctx, sess.Token, reportID)
}

// ResolveReport marks a report of the admin's region Resolved. When a
// repair photo is attached the backend audits it and may refuse.
func (s *Service) ResolveReport(ctx context.Context, sess domain.Session, reportID string, photo *domain.Upload) error {
	if reportID == "" {
		return domain.Invalid("report id is required")
	}
	if photo != nil && len(photo.Data) == 0 {
		photo = nil
	}
	return s.backend.ResolveReport(ctx, sess.Token, reportID, photo)
}

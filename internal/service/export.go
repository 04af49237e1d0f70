package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const pdfContentType = "application/pdf"

// ExportResult carries either the PDF itself or, when object storage is
// configured, the URL of the uploaded file.
type ExportResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	PDF      []byte `json:"-"`
}

func (s *Service) ExportPlanPDF(ctx context.Context, userID, planID int64) (*ExportResult, error) {
	if s.renderer == nil {
		return nil, ErrNotConfigured
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan, err := s.store.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.RenderPlan(user, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to render plan %d: %w", planID, err)
	}
	out := &ExportResult{Filename: fmt.Sprintf("%s-plan-%d.pdf", plan.Type, plan.ID), PDF: doc}
	if s.uploader == nil {
		return out, nil
	}

	key := fmt.Sprintf("plans/%d/%s-%s", userID, uuid.NewString(), out.Filename)
	url, err := s.uploader.Upload(ctx, key, doc, pdfContentType)
	if err != nil {
		// the document is still useful inline
		s.logger.Warnw("Plan upload failed, returning inline PDF", "plan_id", planID, "error", err)
		return out, nil
	}
	out.URL = url
	out.PDF = nil
	return out, nil
}

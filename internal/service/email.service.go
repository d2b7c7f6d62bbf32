package service

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"marketmood/internal/domain"
	"marketmood/internal/repository"
)

// EmailService wraps a rendered report fragment in a full HTML
// document and hands it to the EmailRepository. It does not render
// the report itself.
type EmailService interface {
	SendReport(ctx context.Context, report domain.Report, fragment string) error

	// GenerateReportEmail returns the subject and HTML body without
	// sending anything, for previews.
	GenerateReportEmail(report domain.Report, fragment string) (string, string)
}

type emailServiceHandler struct {
	EmailRepository repository.EmailRepository
	SubjectPrefix   string
	Recipients      []string
}

func NewEmailService(
	emailRepository repository.EmailRepository,
	subjectPrefix string,
	recipients []string,
) EmailService {
	return &emailServiceHandler{
		EmailRepository: emailRepository,
		SubjectPrefix:   subjectPrefix,
		Recipients:      recipients,
	}
}

func (h *emailServiceHandler) GenerateReportEmail(report domain.Report, fragment string) (string, string) {
	generatedAt := report.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	label := report.Score.Verdict.Label
	if label == "" {
		label = domain.VerdictNeutral
	}

	subject := fmt.Sprintf(
		"%s %s: %s (%d%% up)",
		h.SubjectPrefix,
		generatedAt.Format(time.DateOnly),
		label,
		report.Score.Verdict.ProbabilityUp,
	)
	subject = strings.TrimSpace(subject)

	body := strings.Join([]string{
		"<!DOCTYPE html>",
		"<html><head><meta charset=\"utf-8\"><title>" + template.HTMLEscapeString(subject) + "</title></head>",
		"<body>",
		fragment,
		"</body></html>",
	}, "\n")

	return subject, body
}

func (h *emailServiceHandler) SendReport(ctx context.Context, report domain.Report, fragment string) error {
	if len(h.Recipients) == 0 {
		return fmt.Errorf("no email recipients configured")
	}
	subject, body := h.GenerateReportEmail(report, fragment)
	if err := h.EmailRepository.SendEmail(ctx, h.Recipients, subject, body); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}

package reports

import "github.com/pulseboard/feedback-insights/internal/models"

// DigestInterface defines the contract for delivering digest reports
type DigestInterface interface {
	SendDigest(report *models.DigestReport) error
}

package waitlist

import (
	"strings"

	"github.com/heijo-app/waitlist/internal/models"
	"github.com/heijo-app/waitlist/pkg/constants"
)

type CreateWaitlistEntryRequest struct {
	Email string `json:"email" form:"email" binding:"required,waitlist_email"`
}

type SubmissionResponse struct {
	Success bool `json:"success"`
}

type WaitlistEntryResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	SubmittedAt string `json:"submitted_at"`
}

func ToWaitlistEntryModel(req *CreateWaitlistEntryRequest) *models.WaitlistEntry {
	if req == nil {
		return nil
	}
	return &models.WaitlistEntry{
		Email: req.Email,
	}
}

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		ID:          entry.ID,
		Email:       entry.Email,
		SubmittedAt: entry.SubmittedAt.UTC().Format(constants.RFC3339DateTimeFormat),
	}
}

// domainOf is used as a low-cardinality trace attribute.
func domainOf(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return strings.ToLower(email[at+1:])
	}
	return ""
}

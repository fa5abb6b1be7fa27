package companies

import (
	"fmt"
	"strings"

	"jobportal-backend/internal/notify"
)

// reviewEmail builds the owner notification for a review decision. Pending
// produces no email.
func reviewEmail(company Company, ownerEmail, baseURL string) (notify.Message, bool) {
	baseURL = strings.TrimRight(baseURL, "/")
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", company.Name)

	var subject string
	switch company.Status {
	case StatusApproved:
		subject = "Company Profile Approved"
		b.WriteString("We're pleased to inform you that your company profile has been approved.\n")
		b.WriteString("You can now post jobs and start recruiting talented professionals.\n\n")
		fmt.Fprintf(&b, "Go to your dashboard to get started: %s/company/dashboard\n", baseURL)
	case StatusRejected:
		subject = "Company Profile Needs Updates"
		b.WriteString("We've reviewed your company profile and found that it requires some updates before it can be approved.\n\n")
		if company.RejectionReason != "" {
			fmt.Fprintf(&b, "Reason: %s\n\n", company.RejectionReason)
		}
		fmt.Fprintf(&b, "Please update your profile and resubmit for approval: %s/company/profile/edit\n", baseURL)
	default:
		return notify.Message{}, false
	}
	b.WriteString("\nBest regards,\nJob Portal Team\n")

	return notify.Message{To: []string{ownerEmail}, Subject: subject, Body: b.String()}, true
}

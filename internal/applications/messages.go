package applications

import (
	"fmt"
	"strings"

	"jobportal-backend/internal/jobs"
	"jobportal-backend/internal/notify"
)

const fallbackStatusMessage = "Your application status has been updated"

var statusMessages = map[Status]string{
	StatusReviewed:    "Your application has been reviewed",
	StatusShortlisted: "Congratulations! You've been shortlisted",
	StatusInterview:   "Great news! You've been selected for an interview",
	StatusHired:       "Congratulations! You've been hired",
	StatusRejected:    "Thank you for your interest",
	StatusAccepted:    "Your application has been accepted",
}

// StatusMessage is the headline sent to the applicant for a new status.
func StatusMessage(status Status) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return fallbackStatusMessage
}

// statusEmail tells the applicant about a new status. Only notes sent with
// the triggering update are included.
func statusEmail(app Application, job jobs.Job, notes string) notify.Message {
	msg := StatusMessage(app.Status)
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", app.Name)
	switch {
	case job.Title != "" && job.CompanyName != "":
		fmt.Fprintf(&b, "%s for the %s position at %s.\n\n", msg, job.Title, job.CompanyName)
	case job.Title != "":
		fmt.Fprintf(&b, "%s for the %s position.\n\n", msg, job.Title)
	default:
		fmt.Fprintf(&b, "%s.\n\n", msg)
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		fmt.Fprintf(&b, "Notes from the employer: %s\n\n", notes)
	}
	b.WriteString("You can check your application status in your dashboard.\n\n")
	b.WriteString("Best regards,\nJob Portal Team\n")
	return notify.Message{
		To:      []string{app.Email},
		Subject: "Application Status Update: " + msg,
		Body:    b.String(),
	}
}

func submissionEmail(app Application, job jobs.Job, opsEmail string) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", app.Name)
	fmt.Fprintf(&b, "Your application for the %s position at %s has been submitted successfully.\n\n", job.Title, job.CompanyName)
	b.WriteString("We will notify you when the employer reviews your application.\n\n")
	b.WriteString("Best regards,\nJob Portal Team\n")

	to := []string{app.Email}
	if opsEmail != "" {
		to = append(to, opsEmail)
	}
	return notify.Message{
		To:      to,
		Subject: fmt.Sprintf("Application Submitted: %s at %s", job.Title, job.CompanyName),
		Body:    b.String(),
	}
}

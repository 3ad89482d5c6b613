package dataset

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hquach/intern-tracker/internal/types"
)

var syntheticCompanies = []string{
	"Google", "Tesla", "Lockheed Martin", "Meta", "Amazon", "OpenAI",
	"Northrop Grumman", "Nvidia", "Palantir", "Microsoft", "Raytheon",
	"IBM", "Boeing", "SpaceX", "Goldman Sachs", "Citadel", "Deloitte",
	"Airbnb", "Stripe", "Anthropic", "General Electric", "Airbus",
	"Bloomberg", "Apple", "Uber", "Lyft", "Intel", "AMD",
}

var syntheticRoles = []string{
	"Software Engineer Intern", "Machine Learning Intern",
	"Data Science Intern", "Quantitative Analyst Intern",
	"AI Research Intern", "Cybersecurity Intern",
	"Cloud Engineering Intern", "Product Management Intern",
	"Systems Engineering Intern", "Computer Vision Intern",
	"Robotics Intern", "Embedded Systems Intern", "Research Intern",
}

var greetings = []string{
	"Dear Candidate,", "Hello Harrison,", "Hi Applicant,", "Dear Applicant,", "",
}

var closings = []string{
	"Regards, Talent Acquisition", "Sincerely, Recruiting Team",
	"Best, HR Department", "This is an automated message, do not reply", "",
}

var followups = []string{
	"Our recruiting team will review your application in the coming weeks.",
	"We will only contact shortlisted applicants.",
	"Please expect to hear back within 2–3 weeks.",
	"Due to high volume, response times may vary.",
	"Thank you for your patience during the process.",
}

// bodyTemplates mix short, medium and long confirmations plus html and
// reference-number variants.
var bodyTemplates = []string{
	// short
	"{greet} Thank you for applying to {company}. Your application for {role} has been received. {follow} {close}",
	"{greet} Application confirmed: {company} – {role}. {close}",
	"{greet} We have logged your application for {role} at {company}. {follow} {close}",
	"{greet} Your submission for the {role} position at {company} is confirmed. {close}",
	"{greet} This is to notify you that your {company} – {role} application is in our system. {close}",
	"{greet} Confirmation: We’ve received your application to {company}. {close}",
	"{greet} The {company} recruitment system shows your {role} application was submitted. {close}",
	"{greet} Thank you for submitting your interest in {role} at {company}. {close}",
	// medium
	"{greet} This email confirms receipt of your application for {role} at {company}. {follow} {close}",
	"{greet} Your application to {company} for the {role} internship has been successfully submitted. {follow} {close}",
	"{greet} We acknowledge receipt of your application to {company}. It is now being reviewed by our hiring team. {close}",
	"{greet} Your profile has been successfully added to the candidate pool for {role} at {company}. {close}",
	"{greet} Dear applicant, this message confirms your submission to {company} for {role}. No further action is required at this time. {close}",
	"{greet} We have successfully received your application for {role} at {company}. This is an automated acknowledgment. {close}",
	"{greet} Thank you for your interest in {company}. Your application for {role} is complete and ready for review. {close}",
	"{greet} This is an automated message from {company}: your application for {role} was received on our system. {close}",
	// long
	"{greet} Thank you for applying to {company} for the {role} position. This email serves as official confirmation that your application has been submitted successfully. {follow} {close}",
	"{greet} We are pleased to confirm receipt of your application for {role} at {company}. Your submission has been logged into our recruiting database. {follow} {close}",
	"{greet} Dear Applicant, we appreciate your interest in {company}. Your application for {role} has been successfully received. {follow} {close}",
	"{greet} This message confirms that your application for {role} at {company} is now complete in our career system. {close}",
	"{greet} Dear Harrison, thank you for submitting your application to {company}. We are writing to let you know your materials for the {role} internship were received. {close}",
	"{greet} Thank you for your interest in joining {company}. Your application for {role} has been submitted successfully. {follow} {close}",
	"{greet} We confirm that your application to {company} for {role} has been entered into our recruitment pipeline. {follow} {close}",
	"{greet} Your application for {role} at {company} has been submitted. We appreciate your patience as our hiring process progresses. {close}",
	// html
	"<p>{greet} We have received your application for <b>{role}</b> at <b>{company}</b>. Thank you for applying.</p><p>{follow}</p><p>{close}</p>",
	"<div style='font-size:14px'>{greet} Application confirmed: {company} – {role}. {close}</div>",
	"<p>Dear Candidate,<br>Your submission to {company} for {role} was successful.<br>{follow}<br>{close}</p>",
	"<html><body><p>This is to confirm that your application for <em>{role}</em> at {company} has been logged into our career portal.</p><p>{close}</p></body></html>",
	"<span>Confirmation: {company} has received your application for {role}. Our system shows your status as submitted.</span>",
	"<p>Your application for {role} – {company} has been recorded.<br>Thank you for considering us.</p>",
	// extra info
	"Your application ID #{rand_id} for {role} at {company} has been received. {close}",
	"Submission timestamp: {today_date}. Candidate: Harrison Quach. Application: {company} – {role}. Status: Submitted. {close}",
	"This is an acknowledgment of your application for {role} at {company}. Tracking number: #{rand_id}. {close}",
	"Our records show that your application for {role} at {company} was successfully submitted on {today_date}. {close}",
	"Your submission to {company} for {role} has been assigned to our recruiting workflow. Confirmation ID: {rand_id}. {close}",
	"System Notification: Application received. Employer: {company}. Position: {role}. Date: {today_date}. {close}",
	"We have logged your application to {company} for {role}. Confirmation code: #{rand_id}. {close}",
	"This message verifies that your resume has been submitted to {company} for {role}. Submission reference: {rand_id}. {close}",
	"Dear Applicant, this is a receipt for your application to {company} for {role}. Submission time: {today_date}. ID: {rand_id}. {close}",
	"Thank you for applying to {company}. Your application for {role} has been stored with confirmation code {rand_id}. {close}",
}

// Synthetic generates n templated confirmation emails labeled Submitted.
// Pool draws come from the caller's rng, so a seed reproduces the same
// corpus text; ids stay unique regardless.
func Synthetic(n int, rng *rand.Rand) []types.LabeledEmail {
	emails := make([]types.LabeledEmail, 0, n)
	now := time.Now()
	today := now.Format("January 2, 2006")

	for range n {
		company := pick(rng, syntheticCompanies)
		role := pick(rng, syntheticRoles)
		randID := fmt.Sprintf("%d", 100000+rng.Intn(900000))

		body := strings.NewReplacer(
			"{greet}", pick(rng, greetings),
			"{close}", pick(rng, closings),
			"{follow}", pick(rng, followups),
			"{company}", company,
			"{role}", role,
			"{rand_id}", randID,
			"{today_date}", today,
		).Replace(pick(rng, bodyTemplates))

		subjects := []string{
			"Application Confirmation – " + company + " " + role,
			"Your application to " + company + " for " + role,
			company + " – " + role + " application received",
			"Submission confirmed: " + company + " " + role,
		}

		emails = append(emails, types.LabeledEmail{
			RawEmail: types.RawEmail{
				ID:      "synthetic_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
				Subject: pick(rng, subjects),
				Sender:  "careers@" + strings.ReplaceAll(strings.ToLower(company), " ", "") + ".com",
				Body:    strings.TrimSpace(body),
				Date:    now.Format(time.RFC1123Z),
			},
			Starred:   true,
			Label:     types.LabelSubmitted,
			Synthetic: true,
		})
	}
	return emails
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

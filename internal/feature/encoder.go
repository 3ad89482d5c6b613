package feature

import (
	"fmt"

	"github.com/hquach/intern-tracker/internal/textclean"
	"github.com/hquach/intern-tracker/internal/types"
)

// Options bounds the fitted feature space.
type Options struct {
	SubjectFeatures int `json:"subject_features"` // vocabulary cap for subjects
	BodyFeatures    int `json:"body_features"`    // vocabulary cap for bodies
	TopDomains      int `json:"top_domains"`      // domain categories kept before "other"
}

// DefaultOptions gives the body the larger vocabulary cap; it carries far
// more signal than the subject line.
func DefaultOptions() Options {
	return Options{SubjectFeatures: 1000, BodyFeatures: 5000, TopDomains: 50}
}

// Encoder turns (subject, body, sender) triples into fixed-width rows laid
// out as [subject tf-idf | body tf-idf | domain one-hot]. The fitted
// vocabularies and category list are the contract between training and
// inference: a model trained against one Encoder must be applied with the
// same Encoder.
type Encoder struct {
	Subject *Vectorizer    `json:"subject"`
	Body    *Vectorizer    `json:"body"`
	Domain  *DomainEncoder `json:"domain"`
}

// Fit learns the subject and body vocabularies and the domain category list
// from training rows. Cleaning happens inside Fit and EncodeOne so both
// phases apply the identical text transform.
func Fit(train []types.LabeledEmail, opts Options) (*Encoder, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("fit encoder: no training rows")
	}
	subjects := make([]string, len(train))
	bodies := make([]string, len(train))
	domains := make([]string, len(train))
	for i, e := range train {
		subjects[i] = textclean.Clean(e.Subject)
		bodies[i] = textclean.Clean(e.Body)
		domains[i] = ExtractDomain(e.Sender)
	}

	subject, err := FitVectorizer(subjects, opts.SubjectFeatures)
	if err != nil {
		return nil, fmt.Errorf("fit subject vectorizer: %w", err)
	}
	body, err := FitVectorizer(bodies, opts.BodyFeatures)
	if err != nil {
		return nil, fmt.Errorf("fit body vectorizer: %w", err)
	}

	return &Encoder{
		Subject: subject,
		Body:    body,
		Domain:  FitDomains(domains, opts.TopDomains),
	}, nil
}

// Width is the fixed row width produced by this encoder.
func (e *Encoder) Width() int {
	return e.Subject.Width() + e.Body.Width() + e.Domain.Width()
}

// EncodeOne builds the feature row for a single email.
func (e *Encoder) EncodeOne(subject, body, sender string) Vector {
	subRow := e.Subject.Transform(textclean.Clean(subject))
	bodyRow := e.Body.Transform(textclean.Clean(body))

	bodyOff := e.Subject.Width()
	domOff := bodyOff + e.Body.Width()

	n := len(subRow.Indices) + len(bodyRow.Indices) + 1
	indices := make([]int, 0, n)
	values := make([]float64, 0, n)

	indices = append(indices, subRow.Indices...)
	values = append(values, subRow.Values...)
	for _, idx := range bodyRow.Indices {
		indices = append(indices, bodyOff+idx)
	}
	values = append(values, bodyRow.Values...)
	indices = append(indices, domOff+e.Domain.Index(ExtractDomain(sender)))
	values = append(values, 1)

	return Vector{Indices: indices, Values: values, Width: e.Width()}
}

// Encode builds feature rows for a batch, preserving input order.
func (e *Encoder) Encode(emails []types.RawEmail) []Vector {
	rows := make([]Vector, len(emails))
	for i, em := range emails {
		rows[i] = e.EncodeOne(em.Subject, em.Body, em.Sender)
	}
	return rows
}

// EncodeLabeled builds feature rows for labeled training data.
func (e *Encoder) EncodeLabeled(emails []types.LabeledEmail) []Vector {
	rows := make([]Vector, len(emails))
	for i, em := range emails {
		rows[i] = e.EncodeOne(em.Subject, em.Body, em.Sender)
	}
	return rows
}

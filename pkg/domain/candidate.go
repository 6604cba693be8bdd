package domain

import "strings"

// Candidate is a generated domain name awaiting appraisal.
type Candidate struct {
	// Domain is the full name, like "getsaas.com".
	Domain string `json:"domain"`

	// Label is the part before the first dot; the valuation formula
	// scores it for length and embedded keywords.
	Label string `json:"label"`

	// TLD is the part after the last dot.
	TLD string `json:"tld"`

	// Keywords lists the harvest terms the name was built from.
	Keywords []string `json:"keywords,omitempty"`
}

// NewCandidate parses a domain name into a candidate.
func NewCandidate(domainName string, keywords ...string) Candidate {
	label := domainName
	if i := strings.Index(domainName, "."); i >= 0 {
		label = domainName[:i]
	}
	tld := ""
	if i := strings.LastIndex(domainName, "."); i >= 0 {
		tld = domainName[i+1:]
	}
	return Candidate{
		Domain:   domainName,
		Label:    label,
		TLD:      tld,
		Keywords: keywords,
	}
}

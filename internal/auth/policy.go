package auth

import "strings"

// Policy decides whether verified claims grant admin access.
type Policy interface {
	Allow(c *Claims) bool
	// Denial is the message returned to callers the policy rejects.
	Denial() string
}

// AdminClaim grants access to tokens carrying a true admin claim.
type AdminClaim struct{}

func (AdminClaim) Allow(c *Claims) bool { return c != nil && c.Admin }

func (AdminClaim) Denial() string { return "Forbidden - Admin access required" }

// EmailDomain grants access to tokens whose email ends with "@" and the
// domain. The comparison is case-sensitive.
type EmailDomain string

func (d EmailDomain) Allow(c *Claims) bool {
	return c != nil && d != "" && strings.HasSuffix(c.Email, "@"+string(d))
}

func (EmailDomain) Denial() string { return "Not an authorized email domain" }

// PolicyFor returns the email domain policy for domain, or AdminClaim when
// domain is empty.
func PolicyFor(domain string) Policy {
	if domain == "" {
		return AdminClaim{}
	}
	return EmailDomain(domain)
}

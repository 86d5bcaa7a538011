// Package emailcheck classifies email addresses by shape and provider.
//
// The posture is deny-unless-listed: only allow-listed domains are ever
// accepted. The disposable set and the suspicious patterns refine which
// rejection message is reported.
package emailcheck

import (
	"regexp"
	"strings"
	"sync"
)

// Rejection messages shown next to the email field.
const (
	MsgRequired      = "Email address is required."
	MsgInvalidFormat = "Please enter a valid email address."
	MsgNotAllowed    = "Only Gmail, Outlook, iCloud, Yahoo, and AOL email addresses are allowed. Please use one of these trusted providers."
	MsgDisposable    = "Temporary and disposable email addresses are not allowed. Please use a permanent email from Gmail, Outlook, iCloud, Yahoo, or AOL."
	MsgSuspicious    = "This email provider is not allowed. Please use a trusted email service."
)

var emailShape = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Kind identifies why an address was rejected.
type Kind int

const (
	// KindOK means the address is accepted.
	KindOK Kind = iota
	// KindRequired means the input was empty.
	KindRequired
	// KindInvalidFormat means the address does not look like an email.
	KindInvalidFormat
	// KindNotAllowed means the domain is not on the allow-list.
	KindNotAllowed
	// KindDisposable means the domain is a known throwaway service.
	KindDisposable
	// KindSuspicious means the domain matches a suspicious pattern.
	KindSuspicious
)

// Result is the outcome of validating one address.
type Result struct {
	Error     string
	Provider  string
	Kind      Kind
	IsValid   bool
	IsAllowed bool
}

// Validator holds the domain lists. The zero value is not usable; use New.
type Validator struct {
	mu         sync.RWMutex
	allowed    map[string]struct{}
	order      []string
	disposable map[string]struct{}
	patterns   []*regexp.Regexp
}

// New returns a validator seeded with the built-in lists.
func New() *Validator {
	v := &Validator{
		allowed:    make(map[string]struct{}, len(allowedDomains)),
		disposable: make(map[string]struct{}, len(disposableDomains)),
		patterns:   suspiciousPatterns,
	}
	for _, d := range allowedDomains {
		v.addAllowed(d)
	}
	for _, d := range disposableDomains {
		v.disposable[d] = struct{}{}
	}
	return v
}

// Validate classifies email. It never returns an error; rejections are
// described by the result.
func (v *Validator) Validate(email string) Result {
	if strings.TrimSpace(email) == "" {
		return Result{Kind: KindRequired, Error: MsgRequired}
	}

	if !emailShape.MatchString(email) {
		return Result{Kind: KindInvalidFormat, Error: MsgInvalidFormat}
	}

	domain := Domain(email)

	allowed := v.IsDomainAllowed(domain)

	// Known disposable domains are reported as such whether or not they are
	// on the allow-list.
	if v.isDisposable(domain) {
		return Result{Kind: KindDisposable, Error: MsgDisposable, Provider: domain}
	}

	if !allowed {
		return Result{Kind: KindNotAllowed, Error: MsgNotAllowed, Provider: domain}
	}

	if v.isSuspicious(domain) {
		return Result{Kind: KindSuspicious, Error: MsgSuspicious, Provider: domain}
	}

	return Result{Kind: KindOK, IsValid: true, IsAllowed: true, Provider: domain}
}

// IsAllowed reports whether email passes every check.
func (v *Validator) IsAllowed(email string) bool {
	return v.Validate(email).IsAllowed
}

// IsDomainAllowed reports whether domain is on the allow-list.
func (v *Validator) IsDomainAllowed(domain string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.allowed[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// AllowedDomains returns the allow-list in insertion order.
func (v *Validator) AllowedDomains() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// AddAllowedDomain appends domain to the allow-list if it is not present.
func (v *Validator) AddAllowedDomain(domain string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.addAllowed(domain)
}

func (v *Validator) addAllowed(domain string) {
	d := strings.ToLower(strings.TrimSpace(domain))
	if d == "" {
		return
	}
	if _, ok := v.allowed[d]; ok {
		return
	}
	v.allowed[d] = struct{}{}
	v.order = append(v.order, d)
}

func (v *Validator) isDisposable(domain string) bool {
	_, ok := v.disposable[domain]
	return ok
}

func (v *Validator) isSuspicious(domain string) bool {
	for _, p := range v.patterns {
		if p.MatchString(domain) {
			return true
		}
	}
	return false
}

// Domain returns the lowercased part of email after the first '@'.
func Domain(email string) string {
	_, domain, ok := strings.Cut(strings.ToLower(strings.TrimSpace(email)), "@")
	if !ok {
		return ""
	}
	return domain
}

// DisplayName maps the domain of email to a provider label, defaulting to
// the raw domain.
func DisplayName(email string) string {
	domain := Domain(email)
	if name, ok := providerNames[domain]; ok {
		return name
	}
	return domain
}

var defaultValidator = New()

// Validate checks email against the default lists.
func Validate(email string) Result {
	return defaultValidator.Validate(email)
}

// IsAllowed reports whether email passes the default lists.
func IsAllowed(email string) bool {
	return defaultValidator.IsAllowed(email)
}

// AllowedDomains returns the default allow-list.
func AllowedDomains() []string {
	return defaultValidator.AllowedDomains()
}

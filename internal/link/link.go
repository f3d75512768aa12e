// Package link classifies URLs found in messages as safe or advertisement.
package link

import (
	"errors"
	"net/url"
	"strings"
	"unicode"

	"github.com/blockedby/safebot/internal/logger"
)

// ErrMalformed is returned by Parse for input that cannot be a link.
var ErrMalformed = errors.New("malformed link")

// Link is a parsed view over a URL string.
type Link struct {
	URL    string
	Scheme string
	// Host is the lower-cased host without userinfo and port. For app deep
	// links (tg://resolve?...) it is the deep link target.
	Host string
	// Domain is Host normalized through the registry aliases.
	Domain string
	// Path is everything after the first slash, query included, fragment
	// dropped.
	Path string

	err        error
	classifier *Classifier
	result     *Result
}

// Parse splits raw into scheme, host and path. A missing scheme means https.
func Parse(raw string) (*Link, error) {
	l := &Link{URL: raw}

	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, ErrMalformed
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return nil, ErrMalformed
		}
	}

	rest := s
	if i := strings.Index(s, "://"); i >= 0 {
		l.Scheme = strings.ToLower(s[:i])
		rest = s[i+len("://"):]
		if !validScheme(l.Scheme) {
			return nil, ErrMalformed
		}
	} else {
		l.Scheme = "https"
	}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}

	host := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		host = rest[:i]
		l.Path = rest[i+1:]
	}
	// deep links keep their query on the host ("openmessage?user_id=1")
	l.Host = strings.ToLower(host)
	if i := strings.IndexByte(host, '?'); i >= 0 && l.Path == "" {
		l.Path = host[i:]
	}

	name := l.hostName()
	if name == "" || strings.ContainsAny(name, ":[]") {
		return nil, ErrMalformed
	}
	if _, err := url.Parse(l.Scheme + "://" + rest); err != nil {
		return nil, ErrMalformed
	}

	return l, nil
}

// PathNoQuery returns the path with the query string removed.
func (l *Link) PathNoQuery() string {
	p, _, _ := strings.Cut(l.Path, "?")
	return p
}

// Query returns the raw query string without the leading '?'.
func (l *Link) Query() string {
	_, q, _ := strings.Cut(l.Path, "?")
	return q
}

// hostName returns Host without deep link query, userinfo and port.
func (l *Link) hostName() string {
	h, _, _ := strings.Cut(l.Host, "?")
	if i := strings.LastIndexByte(h, '@'); i >= 0 {
		h = h[i+1:]
	}
	if i := strings.LastIndexByte(h, ':'); i >= 0 && isDigits(h[i+1:]) {
		h = h[:i]
	}
	return h
}

// IsReferenceTo reports whether the link points at username, i.e. its path
// without query and surrounding slashes equals the username.
func (l *Link) IsReferenceTo(username string) bool {
	username = strings.TrimPrefix(username, "@")
	if l == nil || l.err != nil || username == "" {
		return false
	}
	return strings.EqualFold(strings.Trim(l.PathNoQuery(), "/"), username)
}

// Err returns the parse error of a link built by Classifier.Link.
func (l *Link) Err() error {
	return l.err
}

// Scan classifies the link once and caches the result.
func (l *Link) Scan() Result {
	if l.result != nil {
		return *l.result
	}
	res := l.classifier.classify(l)
	l.result = &res

	l.classifier.log.Debug().
		Str("url", l.URL).
		Bool("safe", res.Safe).
		Bool("invite", res.Invite).
		Bool("deep", l.classifier.deep).
		Msg("link: scan complete")
	return res
}

// IsSafe returns the cached verdict, scanning first if needed.
func (l *Link) IsSafe() bool {
	return l.Scan().Safe
}

// IsInvite returns whether the link is a chat invite, scanning first if needed.
func (l *Link) IsInvite() bool {
	return l.Scan().Invite
}

// Standardize prefixes https:// to links that carry no scheme at all.
// Telegram reports plain URL entities exactly as typed, often bare.
func Standardize(raw string) string {
	if !strings.Contains(raw, ":") {
		return "https://" + raw
	}
	return raw
}

// Result is the verdict for one link.
type Result struct {
	Safe   bool `json:"safe"`
	Invite bool `json:"invite"`
}

// Classifier applies a Registry to links. It is immutable and safe for
// concurrent use; the Links it returns are not.
type Classifier struct {
	reg  Registry
	deep bool
	log  *logger.Logger
}

// NewClassifier creates a classifier. deep selects the deep check tier.
func NewClassifier(reg Registry, deep bool) *Classifier {
	return &Classifier{reg: reg, deep: deep, log: logger.Get()}
}

// WithDeep returns a classifier sharing the registry with the other tier.
func (c *Classifier) WithDeep(deep bool) *Classifier {
	return &Classifier{reg: c.reg, deep: deep, log: c.log}
}

// Deep reports whether deep checks are enabled.
func (c *Classifier) Deep() bool {
	return c.deep
}

// Link parses raw into a Link bound to this classifier. Malformed input
// yields a Link that scans as unsafe.
func (c *Classifier) Link(raw string) *Link {
	l, err := Parse(raw)
	if err != nil {
		l = &Link{URL: raw, err: err}
	}
	l.classifier = c
	if l.err == nil {
		l.Domain = c.reg.Canonical(l.hostName())
	}
	return l
}

// Classify parses and scans raw in one step.
func (c *Classifier) Classify(raw string) Result {
	return c.Link(raw).Scan()
}

func (c *Classifier) classify(l *Link) Result {
	if l.err != nil {
		return Result{}
	}
	if c.isIgnored(l) {
		return Result{Safe: true}
	}

	checks, ok := c.reg.Domains[l.Domain]
	if !ok {
		return Result{}
	}

	res := Result{
		Invite: l.Domain == c.reg.InviteDomain && IsInviteShaped(l),
	}
	// a bare domain names nothing
	if strings.Trim(l.PathNoQuery(), "/") == "" {
		return res
	}

	if run(l, checks.Quick) {
		return res
	}
	if c.deep && run(l, checks.Deep) {
		return res
	}
	res.Safe = true
	return res
}

// isIgnored reports deep links of an app scheme whose target is known to be
// inert.
func (c *Classifier) isIgnored(l *Link) bool {
	for _, prefix := range c.reg.SafeDeepLinks[l.Scheme] {
		if strings.HasPrefix(l.Host, prefix) {
			return true
		}
	}
	return false
}

func run(l *Link, checks []Check) bool {
	for _, check := range checks {
		if check(l) {
			return true
		}
	}
	return false
}

func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

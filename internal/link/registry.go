package link

import "strings"

// DomainTG is the canonical Telegram short-link domain.
const DomainTG = "t.me"

// InviteHashLength is the length of the hash part of a chat invite link.
const InviteHashLength = 16

// Check is a single path heuristic. It reports true when the link is
// considered advertisement.
type Check func(l *Link) bool

// Checks groups the heuristics of one domain by cost tier.
type Checks struct {
	// Quick checks are cheap and always run.
	Quick []Check
	// Deep checks run in addition to Quick when deep scanning is enabled.
	Deep []Check
}

// Registry is the static knowledge the classifier works from. It is built
// once at start-up and handed to NewClassifier.
type Registry struct {
	// Domains maps a canonical domain to its checks.
	Domains map[string]Checks
	// Aliases maps alternate hosts to their canonical domain.
	Aliases map[string]string
	// SafeDeepLinks maps an app scheme to target prefixes that are inert.
	// The defaults cover tg:// only; other schemes such as app:// come from
	// configuration (SAFE_DEEP_LINKS) and replace the defaults.
	SafeDeepLinks map[string][]string
	// InviteDomain is the domain invite links are recognized on.
	InviteDomain string
}

// DefaultRegistry returns the registry for Telegram links.
func DefaultRegistry() Registry {
	return Registry{
		Domains: map[string]Checks{
			DomainTG: {
				Quick: []Check{IsBotUsername},
				Deep:  []Check{IsInviteShaped, HasStartParameter, IsFolderShare},
			},
		},
		Aliases: map[string]string{
			"telegram.me":  DomainTG,
			"telegram.dog": DomainTG,
			"telegram.org": DomainTG,
		},
		SafeDeepLinks: map[string][]string{
			// Chat links made this way rarely work; real user links use
			// tg://user?id= instead.
			"tg": {"openmessage"},
		},
		InviteDomain: DomainTG,
	}
}

// Canonical returns the canonical domain for host.
func (r Registry) Canonical(host string) string {
	host = strings.TrimPrefix(host, "www.")
	if canonical, ok := r.Aliases[host]; ok {
		return canonical
	}
	return host
}

// IsBotUsername reports whether the path names a bot account.
func IsBotUsername(l *Link) bool {
	return strings.HasSuffix(strings.ToLower(l.PathNoQuery()), "bot")
}

// IsInviteShaped reports whether the path has the structure of a chat
// invite: "+HASH" or "joinchat/HASH" with a fixed hash length. It does not
// check whether the invite is alive.
func IsInviteShaped(l *Link) bool {
	return InviteHash(l) != ""
}

// InviteHash returns the hash of an invite shaped path, or "" when the path
// is not one.
func InviteHash(l *Link) string {
	p := l.PathNoQuery()
	switch {
	case strings.HasPrefix(p, "+"):
		p = p[1:]
	case len(p) >= len("joinchat/") && strings.EqualFold(p[:len("joinchat/")], "joinchat/"):
		p = p[len("joinchat/"):]
	default:
		return ""
	}
	p = strings.TrimSuffix(p, "/")

	if len(p) != InviteHashLength {
		return ""
	}
	for _, c := range p {
		if !isHashChar(c) {
			return ""
		}
	}
	return p
}

// HasStartParameter reports bot deep links carrying a start payload, which
// are the usual shape of referral links.
func HasStartParameter(l *Link) bool {
	q := strings.ToLower(l.Query())
	for _, part := range strings.Split(q, "&") {
		if strings.HasPrefix(part, "start=") || strings.HasPrefix(part, "startgroup=") ||
			strings.HasPrefix(part, "startapp=") {
			return true
		}
	}
	return false
}

// IsFolderShare reports chat folder share links, which subscribe the reader
// to a list of chats at once.
func IsFolderShare(l *Link) bool {
	return strings.HasPrefix(strings.ToLower(l.PathNoQuery()), "addlist/")
}

func isHashChar(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

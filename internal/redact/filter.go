// Package redact finds advertisement entities in a message and neutralizes
// them in place.
package redact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blockedby/safebot/internal/entity"
	"github.com/blockedby/safebot/internal/link"
)

// DefaultPlaceholder replaces the text of unsafe spans.
const DefaultPlaceholder = "[removed]"

// ErrUnhandledKind means an entity kind reached classification without a
// rule for it. It indicates a bug upstream of the filter.
var ErrUnhandledKind = errors.New("unhandled entity kind")

// Mode selects what ScanAndRedact does with an unsafe entity.
type Mode int

const (
	// ModeReportOnly stops at the first unsafe entity without changing anything.
	ModeReportOnly Mode = iota
	// ModeCutUnsafe replaces every unsafe entity with the placeholder.
	ModeCutUnsafe
)

func (m Mode) String() string {
	if m == ModeCutUnsafe {
		return "cut_unsafe"
	}
	return "report_only"
}

// PotentiallyUnsafe reports whether entities of kind k are classified.
func PotentiallyUnsafe(k entity.Kind) bool {
	switch k {
	case entity.KindURL, entity.KindTextLink, entity.KindMention, entity.KindTextMention:
		return true
	}
	return false
}

// Filter walks message entities and decides which ones are advertisement.
type Filter struct {
	classifier  *link.Classifier
	placeholder string
}

// NewFilter creates a filter. An empty placeholder means DefaultPlaceholder.
func NewFilter(classifier *link.Classifier, placeholder string) *Filter {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Filter{classifier: classifier, placeholder: placeholder}
}

// Placeholder returns the replacement text for unsafe spans.
func (f *Filter) Placeholder() string {
	return f.placeholder
}

// Classifier returns the link classifier used by the filter.
func (f *Filter) Classifier() *link.Classifier {
	return f.classifier
}

// ScanAndRedact classifies the potentially unsafe entities of buf in order.
// sender is the identity allowed to reference itself; it may be nil.
//
// In ModeReportOnly it returns true at the first unsafe entity. In
// ModeCutUnsafe it rewrites every unsafe entity and returns whether any was
// found. Entities whose kind has no rule are left untouched and reported
// through the returned error, which wraps ErrUnhandledKind; the scan still
// covers the remaining entities.
func (f *Filter) ScanAndRedact(buf *entity.Buffer, sender *entity.User, mode Mode) (bool, error) {
	var (
		found bool
		errs  []error
	)

	for i := 0; i < buf.Count(); i++ {
		if buf.Dropped(i) || !PotentiallyUnsafe(buf.Entity(i).Kind) {
			continue
		}

		unsafe, err := f.isUnsafe(buf, i, sender)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !unsafe {
			continue
		}

		found = true
		if mode == ModeReportOnly {
			return true, errors.Join(errs...)
		}
		buf.ReplaceSpan(i, f.placeholder)
		buf.SetKind(i, entity.KindItalic)
	}

	return found, errors.Join(errs...)
}

// UnsafeURL classifies a single URL the same way a text link is classified.
func (f *Filter) UnsafeURL(raw string, sender *entity.User) bool {
	l := f.classifier.Link(link.Standardize(raw))
	if l.IsSafe() {
		return false
	}
	return !l.IsReferenceTo(username(sender))
}

func (f *Filter) isUnsafe(buf *entity.Buffer, i int, sender *entity.User) (bool, error) {
	e := buf.Entity(i)

	switch e.Kind {
	case entity.KindURL:
		return f.UnsafeURL(buf.Slice(e.Offset, e.Length), sender), nil
	case entity.KindTextLink:
		return f.UnsafeURL(e.URL, sender), nil
	case entity.KindMention:
		name := strings.TrimPrefix(buf.Slice(e.Offset, e.Length), "@")
		return isBotName(name) && !strings.EqualFold(name, username(sender)), nil
	case entity.KindTextMention:
		if e.User == nil {
			return false, nil
		}
		return e.User.IsBot && !isSame(e.User, sender), nil
	default:
		return false, fmt.Errorf("%w: %s at offset %d", ErrUnhandledKind, e.Kind, e.Offset)
	}
}

func isBotName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), "bot")
}

func isSame(u, sender *entity.User) bool {
	if sender == nil {
		return false
	}
	if u.ID != 0 && sender.ID != 0 {
		return u.ID == sender.ID
	}
	return u.Username != "" && strings.EqualFold(u.Username, sender.Username)
}

func username(u *entity.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimPrefix(u.Username, "@")
}

// Package locale loads the texts the bot sends to chats.
package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blockedby/safebot/internal/entity"
)

//go:embed locales/*.yaml
var embedded embed.FS

// Keys every locale must define.
const (
	KeyMessageDeleted    = "message_deleted"
	KeyNotEnoughRights   = "not_enough_rights"
	KeyAlreadyInChat     = "already_in_chat"
	KeyInviteLinkExpired = "invite_link_expired"
	KeyErrorFlood        = "error_flood"
)

// RequiredKeys lists the keys checked by Validate.
var RequiredKeys = []string{
	KeyMessageDeleted,
	KeyNotEnoughRights,
	KeyAlreadyInChat,
	KeyInviteLinkExpired,
	KeyErrorFlood,
}

var (
	ErrUnknownLocale = errors.New("unknown locale")
	ErrMissingKey    = errors.New("missing locale key")
)

// Catalog holds all loaded locales by code, e.g. "en_US".
type Catalog struct {
	locales map[string]map[string]string
}

// Load reads the locales embedded in the binary.
func Load() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS reads every *.yaml file at the root of fsys. The file name without
// extension is the locale code.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}

	c := &Catalog{locales: make(map[string]map[string]string, len(files))}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		messages, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		c.locales[strings.TrimSuffix(path.Base(name), ".yaml")] = messages
	}
	return c, nil
}

// Parse decodes a locale file and checks it defines every required key.
func Parse(data []byte) (map[string]string, error) {
	var messages map[string]string
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := Validate(messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Validate reports every required key missing from messages.
func Validate(messages map[string]string) error {
	var errs []error
	for _, key := range RequiredKeys {
		if strings.TrimSpace(messages[key]) == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingKey, key))
		}
	}
	return errors.Join(errs...)
}

// Codes returns the loaded locale codes, sorted.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.locales))
	for code := range c.locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Bundle returns the texts of one locale.
func (c *Catalog) Bundle(code string) (*Bundle, error) {
	messages, ok := c.locales[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, code)
	}
	return &Bundle{code: code, messages: messages}, nil
}

// Bundle is a single locale.
type Bundle struct {
	code     string
	messages map[string]string
}

// Code returns the locale code.
func (b *Bundle) Code() string {
	return b.code
}

// Text returns the text for key with {name} placeholders replaced from
// args. An unknown key returns the key itself.
func (b *Bundle) Text(key string, args map[string]string) string {
	tmpl, ok := b.messages[key]
	if !ok {
		return key
	}
	return fill(tmpl, args)
}

// TextWithSpan is Text where the placeholder span is filled with value and
// its position in the result is returned in UTF-16 units, ready to become an
// entity. offset is -1 when the template does not use the placeholder.
func (b *Bundle) TextWithSpan(key, span, value string, args map[string]string) (text string, offset, length int) {
	tmpl, ok := b.messages[key]
	if !ok {
		return key, -1, 0
	}

	before, after, found := strings.Cut(tmpl, "{"+span+"}")
	if !found {
		return fill(tmpl, args), -1, 0
	}
	before, after = fill(before, args), fill(after, args)
	return before + value + after, entity.UTF16Len(before), entity.UTF16Len(value)
}

func fill(tmpl string, args map[string]string) string {
	if len(args) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(args))
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

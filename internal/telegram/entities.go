package telegram

import (
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/gotd/td/tg"

	"github.com/danhigham/autotele/internal/domain"
)

// markdownDelims returns the markdown that opens and closes an entity.
// Underline has no markdown form and is shown as emphasis.
func markdownDelims(units []uint16, e domain.TextEntity) (pre, post string, ok bool) {
	switch e.Kind {
	case domain.EntityBold:
		return "**", "**", true
	case domain.EntityItalic, domain.EntityUnderline:
		return "*", "*", true
	case domain.EntityCode:
		return "`", "`", true
	case domain.EntityStrike:
		return "~~", "~~", true
	case domain.EntityTextURL:
		return "[", "](" + e.URL + ")", true
	case domain.EntityURL:
		return "[", "](" + decodeRange(units, e.Offset, e.Length) + ")", true
	}
	return "", "", false
}

// EntitiesToMarkdown renders text with its entities as markdown for the
// preview. Offsets count UTF-16 code units, so the text is walked in that
// encoding. Entities sharing a start open outermost first and close last.
func EntitiesToMarkdown(text string, entities []domain.TextEntity) string {
	if len(entities) == 0 {
		return text
	}
	units := utf16.Encode([]rune(text))

	type span struct {
		start, end int
		pre, post  string
	}
	spans := make([]span, 0, len(entities))
	for _, e := range entities {
		pre, post, ok := markdownDelims(units, e)
		if !ok || e.Offset < 0 || e.Offset > len(units) {
			continue
		}
		spans = append(spans, span{
			start: e.Offset,
			end:   min(e.Offset+e.Length, len(units)),
			pre:   pre,
			post:  post,
		})
	}
	if len(spans) == 0 {
		return text
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	opens := make(map[int][]string)
	closes := make(map[int][]string)
	for _, sp := range spans {
		opens[sp.start] = append(opens[sp.start], sp.pre)
		// Later spans are nested deeper and must close first.
		closes[sp.end] = append([]string{sp.post}, closes[sp.end]...)
	}

	var b strings.Builder
	for i := 0; i <= len(units); {
		for _, c := range closes[i] {
			b.WriteString(c)
		}
		for _, o := range opens[i] {
			b.WriteString(o)
		}
		if i == len(units) {
			break
		}
		r, n := rune(units[i]), 1
		if utf16.IsSurrogate(r) && i+1 < len(units) {
			r, n = utf16.DecodeRune(r, rune(units[i+1])), 2
		}
		b.WriteRune(r)
		i += n
	}
	return b.String()
}

// ToTGEntities converts entities to their MTProto form.
func ToTGEntities(entities []domain.TextEntity) []tg.MessageEntityClass {
	if len(entities) == 0 {
		return nil
	}
	out := make([]tg.MessageEntityClass, 0, len(entities))
	for _, e := range entities {
		switch e.Kind {
		case domain.EntityURL:
			out = append(out, &tg.MessageEntityURL{Offset: e.Offset, Length: e.Length})
		case domain.EntityTextURL:
			out = append(out, &tg.MessageEntityTextURL{Offset: e.Offset, Length: e.Length, URL: e.URL})
		case domain.EntityUnderline:
			out = append(out, &tg.MessageEntityUnderline{Offset: e.Offset, Length: e.Length})
		case domain.EntityBold:
			out = append(out, &tg.MessageEntityBold{Offset: e.Offset, Length: e.Length})
		case domain.EntityItalic:
			out = append(out, &tg.MessageEntityItalic{Offset: e.Offset, Length: e.Length})
		case domain.EntityCode:
			out = append(out, &tg.MessageEntityCode{Offset: e.Offset, Length: e.Length})
		case domain.EntityStrike:
			out = append(out, &tg.MessageEntityStrike{Offset: e.Offset, Length: e.Length})
		}
	}
	return out
}

// EntityFor returns an entity of the given kind covering the first
// occurrence of sub in text.
func EntityFor(text, sub string, kind domain.EntityKind) (domain.TextEntity, bool) {
	idx := strings.Index(text, sub)
	if idx < 0 || sub == "" {
		return domain.TextEntity{}, false
	}
	return domain.TextEntity{
		Offset: utf16Len(text[:idx]),
		Length: utf16Len(sub),
		Kind:   kind,
	}, true
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// decodeRange returns the text covered by a UTF-16 offset and length,
// clamped to the text.
func decodeRange(units []uint16, offset, length int) string {
	if offset < 0 || offset >= len(units) {
		return ""
	}
	end := min(offset+length, len(units))
	return string(utf16.Decode(units[offset:end]))
}

package telegram

import (
	"testing"
	"unicode/utf16"

	"github.com/gotd/td/tg"

	"github.com/danhigham/autotele/internal/domain"
)

func TestEntitiesToMarkdown_NoEntities(t *testing.T) {
	text := "Hello world"
	result := EntitiesToMarkdown(text, nil)
	if result != text {
		t.Errorf("expected %q, got %q", text, result)
	}
}

func TestEntitiesToMarkdown_Bold(t *testing.T) {
	text := "Hello world"
	entities := []domain.TextEntity{
		{Offset: 6, Length: 5, Kind: domain.EntityBold},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Hello **world**"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_Underline(t *testing.T) {
	text := "Churches at 9am\n- Holy Trinity"
	entities := []domain.TextEntity{
		{Offset: 0, Length: 15, Kind: domain.EntityUnderline},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "*Churches at 9am*\n- Holy Trinity"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_URL(t *testing.T) {
	text := "Booking at https://mycatholic.sg today"
	entities := []domain.TextEntity{
		{Offset: 11, Length: 21, Kind: domain.EntityURL},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Booking at [https://mycatholic.sg](https://mycatholic.sg) today"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_TextURL(t *testing.T) {
	text := "Click here for info"
	entities := []domain.TextEntity{
		{Offset: 6, Length: 4, Kind: domain.EntityTextURL, URL: "https://example.com"},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Click [here](https://example.com) for info"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_NestedBoldItalic(t *testing.T) {
	text := "Hello world"
	entities := []domain.TextEntity{
		{Offset: 0, Length: 11, Kind: domain.EntityBold},
		{Offset: 6, Length: 5, Kind: domain.EntityItalic},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "**Hello *world***"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntitiesToMarkdown_Emoji(t *testing.T) {
	// 👋 is U+1F44B, two UTF-16 code units, so "world" starts at offset 9.
	text := "Hello 👋 world"
	entities := []domain.TextEntity{
		{Offset: 9, Length: 5, Kind: domain.EntityBold},
	}
	result := EntitiesToMarkdown(text, entities)
	expected := "Hello 👋 **world**"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestEntityFor(t *testing.T) {
	text := "Hello 👋 world"
	e, ok := EntityFor(text, "world", domain.EntityUnderline)
	if !ok {
		t.Fatal("EntityFor did not find substring")
	}
	if e.Offset != 9 || e.Length != 5 || e.Kind != domain.EntityUnderline {
		t.Errorf("EntityFor = %+v, want offset 9 length 5 underline", e)
	}

	if _, ok := EntityFor(text, "absent", domain.EntityBold); ok {
		t.Error("EntityFor found a missing substring")
	}
}

func TestToTGEntities(t *testing.T) {
	got := ToTGEntities([]domain.TextEntity{
		{Offset: 1, Length: 2, Kind: domain.EntityURL},
		{Offset: 3, Length: 4, Kind: domain.EntityUnderline},
		{Offset: 5, Length: 6, Kind: domain.EntityTextURL, URL: "https://a.b"},
	})
	if len(got) != 3 {
		t.Fatalf("got %d entities, want 3", len(got))
	}
	if _, ok := got[0].(*tg.MessageEntityURL); !ok {
		t.Errorf("entity 0 = %T, want *tg.MessageEntityURL", got[0])
	}
	if u, ok := got[1].(*tg.MessageEntityUnderline); !ok || u.Offset != 3 || u.Length != 4 {
		t.Errorf("entity 1 = %#v", got[1])
	}
	if u, ok := got[2].(*tg.MessageEntityTextURL); !ok || u.URL != "https://a.b" {
		t.Errorf("entity 2 = %#v", got[2])
	}

	if ToTGEntities(nil) != nil {
		t.Error("ToTGEntities(nil) should be nil")
	}
}

func TestDecodeRange(t *testing.T) {
	tests := []struct {
		text     string
		offset   int
		length   int
		expected string
	}{
		{"Hello world", 6, 5, "world"},
		{"Hello 👋 world", 9, 5, "world"},
		{"Hello 👋 world", 6, 2, "👋"},
		{"", 0, 0, ""},
		{"abc", 10, 5, ""}, // out of range
		{"abc", 1, 10, "bc"},
	}

	for _, tt := range tests {
		result := decodeRange(utf16.Encode([]rune(tt.text)), tt.offset, tt.length)
		if result != tt.expected {
			t.Errorf("decodeRange(%q, %d, %d) = %q, want %q",
				tt.text, tt.offset, tt.length, result, tt.expected)
		}
	}
}

func TestEntitiesToMarkdown_OutOfRangeIgnored(t *testing.T) {
	text := "short"
	result := EntitiesToMarkdown(text, []domain.TextEntity{
		{Offset: 50, Length: 2, Kind: domain.EntityBold},
	})
	if result != text {
		t.Errorf("expected %q, got %q", text, result)
	}
}

func TestEntitiesToMarkdown_MassBookingHeading(t *testing.T) {
	text := "Book at https://mycatholic.sg\n\nAt 9am\n- Holy Trinity"
	url, _ := EntityFor(text, "https://mycatholic.sg", domain.EntityURL)
	heading, _ := EntityFor(text, "At 9am", domain.EntityUnderline)

	result := EntitiesToMarkdown(text, []domain.TextEntity{heading, url})
	expected := "Book at [https://mycatholic.sg](https://mycatholic.sg)\n\n*At 9am*\n- Holy Trinity"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

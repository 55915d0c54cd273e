// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"strings"
	"testing"

	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// CLEAN TESTS
// =============================================================================

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no trailer", "The VPN requires MFA.", "The VPN requires MFA."},
		{
			"trailer without list",
			"The VPN requires MFA.\n\nJSON list of used source numbers:",
			"The VPN requires MFA.",
		},
		{
			"trailer with empty list",
			"The VPN requires MFA.\nJSON list of used source numbers: []",
			"The VPN requires MFA.",
		},
		{
			"trailer case insensitive",
			"Answer text.\njson LIST of USED source numbers: []",
			"Answer text.",
		},
		{
			"trailer only at end",
			"JSON list of used source numbers: [] appears mid-answer, then more text.",
			"JSON list of used source numbers: [] appears mid-answer, then more text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// FORMAT PIPELINE TESTS
// =============================================================================

func lookupFor(ids ...int) map[int]model.Citation {
	lookup := make(map[int]model.Citation)
	for _, id := range ids {
		lookup[id] = model.Citation{ID: id, Title: "Doc"}
	}
	return lookup
}

func TestFormat_EmptyInput(t *testing.T) {
	if got := Format("", lookupFor(1)); got != "" {
		t.Errorf("Format(\"\") = %q, want \"\"", got)
	}
}

func TestFormat_Paragraphs(t *testing.T) {
	got := Format("First paragraph.\n\nSecond paragraph.", nil)
	want := "<p>First paragraph.</p><p>Second paragraph.</p>"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormat_LineBreaksWithinParagraph(t *testing.T) {
	got := Format("line one\nline two", nil)
	want := "<p>line one<br/>line two</p>"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormat_Headings(t *testing.T) {
	for _, input := range []string{"# Title", "## Title", "### Title"} {
		got := Format(input, nil)
		if !strings.Contains(got, "<h3>Title</h3>") {
			t.Errorf("Format(%q) = %q, want an <h3>", input, got)
		}
	}
}

func TestFormat_Bold(t *testing.T) {
	got := Format("this is **important** text", nil)
	if !strings.Contains(got, "<strong>important</strong>") {
		t.Errorf("Format = %q, want <strong>", got)
	}
}

func TestFormat_StandaloneBoldLineBecomesParagraph(t *testing.T) {
	got := Format("**Prerequisites**\n- item one", nil)
	if !strings.Contains(got, "<p><strong>Prerequisites</strong></p>") {
		t.Errorf("Format = %q, want bolded line as its own paragraph", got)
	}
}

func TestFormat_Links(t *testing.T) {
	got := Format("see [the guide](https://docs.example.com/vpn)", nil)
	want := `<a href="https://docs.example.com/vpn" target="_blank" rel="noopener noreferrer">the guide</a>`
	if !strings.Contains(got, want) {
		t.Errorf("Format = %q, want link %q", got, want)
	}
}

func TestFormat_CitationRefs(t *testing.T) {
	got := Format("Use the portal [1] and the form [2].", lookupFor(1, 2))
	for _, want := range []string{
		`<sup class="citation-ref" data-citation-id="1">1</sup>`,
		`<sup class="citation-ref" data-citation-id="2">2</sup>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Format = %q, missing %q", got, want)
		}
	}
}

func TestFormat_UnknownCitationStaysLiteral(t *testing.T) {
	got := Format("Use the portal [7].", lookupFor(1))
	if strings.Contains(got, "citation-ref") {
		t.Errorf("Format = %q, unknown ID must not become a reference", got)
	}
	if !strings.Contains(got, "[7]") {
		t.Errorf("Format = %q, want literal [7] preserved", got)
	}
}

func TestFormat_NoLookupLeavesMarkersAlone(t *testing.T) {
	got := Format("Use the portal [1].", nil)
	if !strings.Contains(got, "[1]") {
		t.Errorf("Format = %q, want literal [1] with empty lookup", got)
	}
}

func TestFormat_UnorderedList(t *testing.T) {
	got := Format("- first\n- second", nil)
	want := "<ul>\n<li>first</li>\n<li>second</li>\n</ul>"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormat_OrderedList(t *testing.T) {
	got := Format("1. first\n2. second", nil)
	want := "<ol>\n<li>first</li>\n<li>second</li>\n</ol>"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormat_NestedList(t *testing.T) {
	got := Format("- outer\n  - inner\n- outer again", nil)
	want := "<ul>\n<li>outer</li>\n<ul>\n<li>inner</li>\n</ul>\n<li>outer again</li>\n</ul>"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormat_ListTypeSwitchAtSameIndent(t *testing.T) {
	got := Format("1. ordered\n- unordered", nil)
	want := "<ol>\n<li>ordered</li>\n</ol>\n<ul>\n<li>unordered</li>\n</ul>"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormat_BlankLineInsideListSwallowed(t *testing.T) {
	got := Format("- first\n\n- second", nil)
	if strings.Count(got, "<ul>") != 1 {
		t.Errorf("Format = %q, want a single list across the blank line", got)
	}
}

func TestFormat_EscapesDisallowedTags(t *testing.T) {
	got := Format("run <script>alert(1)</script> now", nil)
	if strings.Contains(got, "<script>") {
		t.Errorf("Format = %q, script tag must be escaped", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("Format = %q, want entity-escaped script tag", got)
	}
}

func TestFormat_AllowsOwnTags(t *testing.T) {
	got := Format("already <strong>bold</strong> text", nil)
	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("Format = %q, own tags must pass through", got)
	}
}

func TestFormat_StableOnReformat(t *testing.T) {
	input := "- first item\n- second item\n  1. nested step\n- [guide](https://docs.example.com/vpn)"

	once := Format(input, nil)
	twice := Format(once, nil)

	if twice != once {
		t.Fatalf("second pass changed output:\nonce:  %q\ntwice: %q", once, twice)
	}
	for _, tag := range []string{"<ul>", "<ol>", "<li>", "<a "} {
		if strings.Count(twice, tag) != strings.Count(once, tag) {
			t.Errorf("tag %s count changed on reformat: %d -> %d",
				tag, strings.Count(once, tag), strings.Count(twice, tag))
		}
	}
}

func TestFormat_BoldNotDuplicatedOnReformat(t *testing.T) {
	once := Format("**Important:** read the policy first", nil)
	twice := Format(once, nil)

	if got := strings.Count(twice, "<strong>"); got != 1 {
		t.Errorf("strong count after reformat = %d, want 1\nonce:  %q\ntwice: %q",
			got, once, twice)
	}
}

func TestFormat_StripsTrailerBeforeFormatting(t *testing.T) {
	got := Format("The answer [1].\n\nJSON list of used source numbers: []", lookupFor(1))
	if strings.Contains(got, "JSON list") {
		t.Errorf("Format = %q, trailer must be stripped", got)
	}
}

// =============================================================================
// CITATION RESOLUTION TESTS
// =============================================================================

func TestReferencedCitations(t *testing.T) {
	citations := []model.Citation{
		{ID: 1, Title: "VPN Guide"},
		{ID: 2, Title: "MFA Setup"},
		{ID: 3, Title: "Unreferenced"},
	}

	referenced, lookup := ReferencedCitations("See [2] then [1]. Also [2] again.", citations)

	if len(referenced) != 2 {
		t.Fatalf("referenced = %d citations, want 2", len(referenced))
	}
	// Ordered by first appearance, each at most once
	if referenced[0].ID != 2 || referenced[1].ID != 1 {
		t.Errorf("referenced order = [%d %d], want [2 1]", referenced[0].ID, referenced[1].ID)
	}
	if len(lookup) != 3 {
		t.Errorf("lookup has %d entries, want 3", len(lookup))
	}
}

func TestReferencedCitations_UnknownIDDropped(t *testing.T) {
	citations := []model.Citation{{ID: 1, Title: "Doc"}}

	referenced, _ := ReferencedCitations("See [1] and [9].", citations)
	if len(referenced) != 1 || referenced[0].ID != 1 {
		t.Errorf("referenced = %v, want only citation 1", referenced)
	}
}

func TestReferencedCitations_EmptyInputs(t *testing.T) {
	referenced, lookup := ReferencedCitations("", []model.Citation{{ID: 1}})
	if referenced != nil || len(lookup) != 0 {
		t.Errorf("empty answer: referenced=%v lookup=%v, want empty", referenced, lookup)
	}

	referenced, lookup = ReferencedCitations("See [1].", nil)
	if referenced != nil || len(lookup) != 0 {
		t.Errorf("no citations: referenced=%v lookup=%v, want empty", referenced, lookup)
	}
}

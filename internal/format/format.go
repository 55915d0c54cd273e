// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format converts backend answer text into structured HTML fragments.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// PERFORMANCE: Pre-compiled regex (compiled once at startup)
// =============================================================================

var (
	// Backend boilerplate trailer, anchored to the end of the answer.
	trailerRegex = regexp.MustCompile(`(?is)\s*JSON list of used source numbers:\s*(\[\])?\s*$`)

	// Angle-bracket sequences considered for escaping.
	tagRegex = regexp.MustCompile(`<([^>]+)>`)

	// Markdown ATX heading (any level collapses to one style).
	headingRegex = regexp.MustCompile(`(?m)^#+\s*(.*)$`)

	// Bold **text**.
	boldRegex = regexp.MustCompile(`\*\*(.*?)\*\*`)

	// Inline link [text](url).
	linkRegex = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

	// Inline citation reference [n].
	citationRefRegex = regexp.MustCompile(`\[(\d+)\]`)

	// Intermediate heading marker emitted by the heading pass.
	customHeadingRegex = regexp.MustCompile(`<custom-heading>(.*?)</custom-heading>`)

	// List item shapes, matched against the trimmed line.
	orderedItemRegex   = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	unorderedItemRegex = regexp.MustCompile(`^[-*]\s+(.*)$`)

	// Paragraph-boundary split and tag protection.
	blankLineRegex   = regexp.MustCompile(`\n\s*\n`)
	anyTagRegex      = regexp.MustCompile(`<[^>]*>`)
	placeholderRegex = regexp.MustCompile(`^__HTML_PLACEHOLDER_\d+__`)
)

// allowedTags are the only tag names the escape pass lets through: the tags
// the formatter itself emits in later passes. Everything else in angle
// brackets is entity-escaped.
var allowedTags = map[string]bool{
	"custom-heading": true,
	"ul":             true,
	"ol":             true,
	"li":             true,
	"strong":         true,
	"a":              true,
	"br":             true,
}

// =============================================================================
// RESPONSE CLEANING
// =============================================================================

// Clean strips the backend's boilerplate trailer ("JSON list of used source
// numbers:", optionally followed by an empty-list marker) from the end of an
// answer. The same rule is applied by the formatter, the citation resolver
// and the orchestrator, so every consumer sees identical text.
func Clean(text string) string {
	if text == "" {
		return text
	}
	return strings.TrimSpace(trailerRegex.ReplaceAllString(text, ""))
}

// =============================================================================
// FORMAT PIPELINE
// =============================================================================

// Format transforms raw answer text into a safe HTML fragment. Inline
// citation markers [n] become reference elements only when n is a key in
// lookup; unmatched markers stay literal text. Never panics; empty input is
// returned unchanged.
//
// The passes run in a fixed order, each on the output of the previous:
// trailer strip, tag escaping, headings, bold, links, citation references,
// list reconstruction, heading finalization, paragraph assembly.
func Format(raw string, lookup map[int]model.Citation) string {
	if raw == "" {
		return raw
	}

	text := Clean(raw)
	text = escapeDisallowedTags(text)
	text = headingRegex.ReplaceAllString(text, "<custom-heading>$1</custom-heading>")
	text = boldRegex.ReplaceAllString(text, "<strong>$1</strong>")
	text = linkRegex.ReplaceAllString(text, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)
	text = convertCitationRefs(text, lookup)
	text = rebuildLists(text)
	text = customHeadingRegex.ReplaceAllString(text, "<h3>$1</h3>")
	text = assembleParagraphs(text)
	return text
}

// =============================================================================
// PASS: TAG ESCAPING
// =============================================================================

// escapeDisallowedTags entity-escapes every angle-bracket sequence whose tag
// name is not on the formatter's own allow-list. Allowed tags pass through
// untouched, which makes the formatter idempotent on its own output for the
// tags it owns.
func escapeDisallowedTags(text string) string {
	return tagRegex.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[1 : len(match)-1]
		if allowedTags[tagName(inner)] {
			return match
		}
		return "&lt;" + inner + "&gt;"
	})
}

// tagName extracts the tag name from the inside of an angle-bracket
// sequence: leading slash stripped, attributes ignored.
func tagName(inner string) string {
	name := strings.TrimPrefix(inner, "/")
	if i := strings.IndexAny(name, " \t\n/"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// =============================================================================
// PASS: CITATION REFERENCES
// =============================================================================

// convertCitationRefs turns bracketed integers into superscript citation
// references, but only for IDs present in the lookup. Unknown IDs stay as
// literal text so the output never carries dangling links.
func convertCitationRefs(text string, lookup map[int]model.Citation) string {
	if len(lookup) == 0 {
		return text
	}
	return citationRefRegex.ReplaceAllStringFunc(text, func(match string) string {
		id, err := strconv.Atoi(match[1 : len(match)-1])
		if err != nil {
			return match
		}
		if _, ok := lookup[id]; !ok {
			return match
		}
		return fmt.Sprintf(`<sup class="citation-ref" data-citation-id="%d">%d</sup>`, id, id)
	})
}

// =============================================================================
// PASS: LIST RECONSTRUCTION
// =============================================================================

// listContext is one open list on the nesting stack.
type listContext struct {
	tag    string // "ul" or "ol"
	indent int
}

// rebuildLists is a line-oriented state machine that reconstructs nested
// ordered/unordered lists from markdown-style item lines. It maintains a
// stack of open list contexts keyed by indentation; closing tags are emitted
// in LIFO order. Blank lines inside an active list are swallowed; blank
// lines outside any list are preserved as paragraph separators.
func rebuildLists(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	var stack []listContext

	closeDownTo := func(indent int) {
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, "</"+top.tag+">")
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		indent := leadingWhitespace(line)

		if trimmed == "" {
			if len(stack) == 0 {
				out = append(out, "")
			}
			continue
		}

		orderedMatch := orderedItemRegex.FindStringSubmatch(trimmed)
		unorderedMatch := unorderedItemRegex.FindStringSubmatch(trimmed)

		if orderedMatch == nil && unorderedMatch == nil {
			// Not a list item: close everything unconditionally.
			closeDownTo(-1)

			// A standalone bolded line reads as its own paragraph.
			if strings.Contains(trimmed, "<strong>") && !strings.Contains(trimmed, "<custom-heading>") {
				out = append(out, "<p>"+trimmed+"</p>")
			} else {
				out = append(out, trimmed)
			}
			continue
		}

		itemTag := "ul"
		itemContent := ""
		if orderedMatch != nil {
			itemTag = "ol"
			itemContent = orderedMatch[2]
		} else {
			itemContent = unorderedMatch[1]
		}

		// Unwind the stack: descend through deeper contexts, and close a
		// same-indent context whose list type differs from this item's.
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if indent > top.indent {
				break
			}
			if indent < top.indent || top.tag != itemTag {
				stack = stack[:len(stack)-1]
				out = append(out, "</"+top.tag+">")
				continue
			}
			break
		}

		// Open a new context when the stack is empty, the item is deeper
		// than the current context, or the type flipped at equal indent.
		if len(stack) == 0 || indent > stack[len(stack)-1].indent ||
			(indent == stack[len(stack)-1].indent && stack[len(stack)-1].tag != itemTag) {
			out = append(out, "<"+itemTag+">")
			stack = append(stack, listContext{tag: itemTag, indent: indent})
		}

		out = append(out, "<li>"+itemContent+"</li>")
	}

	closeDownTo(-1)
	return strings.Join(out, "\n")
}

// leadingWhitespace counts leading whitespace characters, the measure of
// indentation for list nesting.
func leadingWhitespace(line string) int {
	count := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		count++
	}
	return count
}

// =============================================================================
// PASS: PARAGRAPH ASSEMBLY
// =============================================================================

// assembleParagraphs wraps plain-text blocks in paragraph tags. Markup
// emitted by earlier passes is protected behind placeholders first, so that
// splitting on blank lines never cuts through a tag; blocks that begin with
// protected markup (lists, headings, standalone paragraphs) pass through
// unwrapped. Within a plain block, single newlines become line breaks.
func assembleParagraphs(text string) string {
	type protected struct {
		key string
		tag string
	}
	var placeholders []protected
	counter := 0

	text = anyTagRegex.ReplaceAllStringFunc(text, func(match string) string {
		key := fmt.Sprintf("__HTML_PLACEHOLDER_%d__", counter)
		counter++
		placeholders = append(placeholders, protected{key: key, tag: match})
		return key
	})

	blocks := blankLineRegex.Split(text, -1)
	var sb strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if placeholderRegex.MatchString(block) {
			sb.WriteString(block)
			continue
		}
		block = strings.ReplaceAll(block, "\n", "<br/>")
		sb.WriteString("<p>" + block + "</p>")
	}

	result := sb.String()
	for _, p := range placeholders {
		result = strings.Replace(result, p.key, p.tag, 1)
	}
	return result
}

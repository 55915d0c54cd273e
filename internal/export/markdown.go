// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/askdesk/internal/format"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown format.
func (e *MarkdownExporter) Export(t *storage.Transcript) ([]byte, error) {
	// Validate transcript data
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	if len(t.Messages) == 0 {
		return nil, fmt.Errorf("transcript has no messages")
	}
	if t.CreatedAt.IsZero() {
		return nil, fmt.Errorf("transcript has invalid creation timestamp")
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(t.Summary)))
		sb.WriteString(fmt.Sprintf("session: %s\n", t.SessionID))
		sb.WriteString(fmt.Sprintf("date: %s\n", t.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("updated: %s\n", t.UpdatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(t.Messages)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: askdesk\n")
		sb.WriteString("---\n\n")
	}

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", t.Summary))

	// Metadata section
	if e.options.IncludeMetadata {
		sb.WriteString("## Session Information\n\n")
		if t.SessionID != "" {
			sb.WriteString(fmt.Sprintf("- **Session**: %s\n", t.SessionID))
		}
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(t.CreatedAt)))
		sb.WriteString(fmt.Sprintf("- **Last Updated**: %s\n", formatTimestamp(t.UpdatedAt)))
		sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", len(t.Messages)))
		sb.WriteString("\n---\n\n")
	}

	// Conversation messages
	sb.WriteString("## Conversation\n\n")

	for _, msg := range t.Messages {
		// Role label with timestamp
		roleLabel := e.formatRoleLabel(msg.Role)
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				roleLabel,
				formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", roleLabel))
		}

		if msg.Role == string(model.RoleAgent) {
			answer := msg.AIResponse
			if answer == "" {
				answer = msg.Content
			}
			// Answers are already markdown; the trailer still needs stripping.
			sb.WriteString(format.Clean(answer))
			sb.WriteString("\n")

			if e.options.IncludeCitations {
				referenced, _ := format.ReferencedCitations(answer, msg.Citations)
				if len(referenced) > 0 {
					sb.WriteString("\n**Sources:**\n\n")
					for _, c := range referenced {
						sb.WriteString(fmt.Sprintf("%d. %s\n", c.ID, c.DisplayTitle()))
					}
				}
			}
		} else {
			sb.WriteString(msg.Content)
			sb.WriteString("\n")
		}

		sb.WriteString("\n---\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// formatRoleLabel returns a display label for a role.
func (e *MarkdownExporter) formatRoleLabel(role string) string {
	switch role {
	case string(model.RoleUser):
		return "You"
	case string(model.RoleAgent):
		return "Assistant"
	default:
		return role
	}
}

// escapeYAML escapes a string for safe inclusion in YAML frontmatter.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#{}[]|>&*!%'\"\n") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", " ")
		return "\"" + s + "\""
	}
	return s
}

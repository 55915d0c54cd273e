// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/askdesk/internal/format"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to HTML format with embedded CSS.
// Agent answers are rendered through the citation-aware formatter, so
// headings, lists, links, and citation markers come out as real HTML.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a transcript to HTML format.
func (e *HTMLExporter) Export(t *storage.Transcript) ([]byte, error) {
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

	// HTML header
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(t.Summary)))
	sb.WriteString("    <meta name=\"generator\" content=\"askdesk\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", t.CreatedAt.Format(time.RFC3339)))

	// Embedded CSS
	sb.WriteString(e.getCSS())

	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))

	// Container
	sb.WriteString("    <div class=\"container\">\n")

	// Header with metadata
	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(t))
	}

	// Conversation messages
	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range t.Messages {
		sb.WriteString(e.renderMessage(&msg))
	}
	sb.WriteString("        </main>\n")

	// Footer
	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>askdesk</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")

	// Theme toggle script
	sb.WriteString(e.getScript())

	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(t *storage.Transcript) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(t.Summary)))
	sb.WriteString("            <div class=\"metadata\">\n")
	if t.SessionID != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Session:</strong> %s</span>\n", html.EscapeString(t.SessionID)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(t.CreatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(t.Messages)))
	sb.WriteString("                <button class=\"theme-toggle\" onclick=\"toggleTheme()\" title=\"Toggle theme\">[Theme]</button>\n")
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderMessage renders a single message.
func (e *HTMLExporter) renderMessage(msg *storage.StoredMessage) string {
	var sb strings.Builder

	roleClass := strings.ToLower(msg.Role)
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	// Message header
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", e.getRoleLabel(msg.Role)))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")

	// Message content
	sb.WriteString("                <div class=\"message-content\">\n")

	if msg.Role == string(model.RoleAgent) {
		sb.WriteString(e.renderAgentContent(msg))
	} else {
		sb.WriteString("<p>" + html.EscapeString(msg.Content) + "</p>\n")
	}

	sb.WriteString("                </div>\n")
	sb.WriteString("            </div>\n")

	return sb.String()
}

// renderAgentContent renders an answer through the formatter and appends the
// sources it actually referenced.
func (e *HTMLExporter) renderAgentContent(msg *storage.StoredMessage) string {
	var sb strings.Builder

	answer := msg.AIResponse
	if answer == "" {
		answer = msg.Content
	}

	referenced, lookup := format.ReferencedCitations(answer, msg.Citations)
	sb.WriteString(format.Format(answer, lookup))
	sb.WriteString("\n")

	if e.options.IncludeCitations && len(referenced) > 0 {
		sb.WriteString("<div class=\"citations\">\n")
		sb.WriteString("<p class=\"citations-title\"><strong>Sources</strong></p>\n<ol>")
		for _, c := range referenced {
			sb.WriteString(fmt.Sprintf("<li id=\"citation-%d\">%s</li>", c.ID, html.EscapeString(c.DisplayTitle())))
		}
		sb.WriteString("</ol>\n</div>\n")
	}

	return sb.String()
}

// getRoleLabel returns a formatted label for the message role.
func (e *HTMLExporter) getRoleLabel(role string) string {
	switch role {
	case string(model.RoleUser):
		return "[You]"
	case string(model.RoleAgent):
		return "[Assistant]"
	case "":
		return "Unknown"
	default:
		runes := []rune(role)
		return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
	}
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

// getCSS returns the embedded CSS for the HTML export.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        /* Reset and base styles */
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
        }

        /* Light theme (default) */
        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --text-primary: #24292e;
            --text-secondary: #586069;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --user-bg: #f6f8fa;
            --agent-bg: #ffffff;
            --accent-blue: #0366d6;
        }

        /* Dark theme */
        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --text-muted: #565f89;
            --border-color: #414868;
            --user-bg: #1f2335;
            --agent-bg: #24283b;
            --accent-blue: #7aa2f7;
        }

        body {
            font-family: var(--font-sans);
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.6;
        }

        .container {
            max-width: 840px;
            margin: 0 auto;
            padding: 24px 16px;
        }

        .header {
            border-bottom: 1px solid var(--border-color);
            padding-bottom: 16px;
            margin-bottom: 24px;
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            color: var(--text-secondary);
            font-size: 0.9em;
            margin-top: 8px;
        }

        .theme-toggle {
            background: var(--bg-secondary);
            color: var(--text-primary);
            border: 1px solid var(--border-color);
            border-radius: 4px;
            padding: 2px 8px;
            cursor: pointer;
        }

        .message {
            border: 1px solid var(--border-color);
            border-radius: 8px;
            margin-bottom: 16px;
            overflow: hidden;
        }

        .user-message { background: var(--user-bg); }
        .agent-message { background: var(--agent-bg); }

        .message-header {
            display: flex;
            justify-content: space-between;
            padding: 8px 16px;
            border-bottom: 1px solid var(--border-color);
            font-size: 0.85em;
            color: var(--text-secondary);
        }

        .message-content {
            padding: 16px;
        }

        .message-content h3 {
            margin: 12px 0 8px;
        }

        .message-content p {
            margin-bottom: 8px;
        }

        .message-content ul,
        .message-content ol {
            margin: 8px 0 8px 24px;
        }

        .message-content a {
            color: var(--accent-blue);
        }

        sup.citation-ref {
            color: var(--accent-blue);
            font-weight: bold;
            margin-left: 1px;
        }

        .citations {
            border-top: 1px dashed var(--border-color);
            margin-top: 12px;
            padding-top: 8px;
            font-size: 0.9em;
            color: var(--text-secondary);
        }

        .citations ol {
            margin-left: 24px;
        }

        .footer {
            border-top: 1px solid var(--border-color);
            margin-top: 24px;
            padding-top: 12px;
            text-align: center;
            color: var(--text-muted);
            font-size: 0.85em;
        }
    </style>
`
}

// =============================================================================
// EMBEDDED SCRIPT
// =============================================================================

// getScript returns the theme toggle script.
func (e *HTMLExporter) getScript() string {
	return `    <script>
        function toggleTheme() {
            const body = document.body;
            if (body.classList.contains('dark-theme')) {
                body.classList.remove('dark-theme');
                body.classList.add('light-theme');
                localStorage.setItem('theme', 'light');
            } else {
                body.classList.remove('light-theme');
                body.classList.add('dark-theme');
                localStorage.setItem('theme', 'dark');
            }
        }

        // Load saved theme preference
        document.addEventListener('DOMContentLoaded', function() {
            const savedTheme = localStorage.getItem('theme');
            if (savedTheme) {
                document.body.classList.remove('dark-theme', 'light-theme');
                document.body.classList.add(savedTheme + '-theme');
            }
        });
    </script>
`
}

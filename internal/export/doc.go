// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides transcript export functionality for askdesk.
//
// Transcripts can be exported to HTML, Markdown, or JSON. The HTML exporter
// runs agent answers through the citation-aware formatter, so markers like
// [1] become superscript references linked to a source list.
//
// # Key Types
//
//   - Exporter: Interface implemented by all format exporters
//   - HTMLExporter: Styled HTML with embedded CSS and theme toggle
//   - MarkdownExporter: Markdown with YAML frontmatter
//   - JSONExporter: Complete transcript data as JSON
//
// # Usage
//
//	exporter, err := export.ExporterFor("html", nil)
//	path, err := export.ExportToFile(transcript, exporter, nil)
package export

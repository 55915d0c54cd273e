// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format converts backend answer text into structured HTML fragments.
//
// The backend speaks a small, fixed markdown subset: ATX headings, **bold**,
// [text](url) links, [n] citation markers, and -,*,1. list items with
// indentation-based nesting. Format runs a fixed pipeline of independent
// passes over the text and emits a safe HTML fragment; anything in angle
// brackets that the formatter does not itself emit is entity-escaped.
//
// ReferencedCitations resolves which of an answer's citations are actually
// referenced inline, and produces the lookup table Format uses to gate
// citation links. Clean strips the backend's boilerplate trailer and is
// shared by every consumer of the raw answer text.
//
// This is deliberately not a general markdown parser.
package format

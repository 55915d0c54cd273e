// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides transcript persistence for askdesk.
//
// This package handles saving and loading chat transcripts to/from disk,
// with support for search, listing, and retention limits.
//
// # Key Types
//
//   - TranscriptStore: Main storage type for transcripts
//   - Transcript: Serializable conversation with metadata
//   - TranscriptMeta: Lightweight metadata for listing
//
// # Usage
//
// Create a store and save a transcript:
//
//	store, err := storage.NewTranscriptStoreWithDir(dataDir)
//	id, err := store.Save(transcript)
//
// List and load transcripts:
//
//	metas, err := store.List()
//	t, err := store.Load(metas[0].ID)
//
// Search transcripts:
//
//	results, err := store.SearchMessages("query text")
//
// # Storage Location
//
// Transcripts are stored in ~/.askdesk/transcripts/ as JSON files.
package storage

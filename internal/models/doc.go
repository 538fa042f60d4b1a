// Package models defines domain entities and data-source interfaces for the tracklist engine.
//
// The package contains two categories of types:
//
// 1. Domain rows and view types consumed by the list engine:
//   - [Track] : Song metadata with a fractional position sort key
//   - [Page] : One materialized page of tracks plus paging metadata
//   - [Query] : Sort order and search filter identifying a view
//
// 2. Persistent entities and contracts:
//   - [Playlist] : Database-backed playlist with soft delete support
//   - [TrackSource] : The paged fetch / id fetch / order persistence contract
//     the engine requires from storage
//
// Playlist implements the Model interface providing ID generation, timestamps,
// validation, and soft delete support. The Repository[T] interface defines
// standard CRUD operations for database access.
package models

package models

import (
	"fmt"
	"time"
)

var _ Model = (*Playlist)(nil)

// Playlist is a database-backed playlist with soft delete support.
type Playlist struct {
	id          string
	sequence    int
	name        string
	description string
	trackCount  int
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewPlaylist creates a playlist with the given sequence, name, and description.
// The ID is assigned by the repository on Create.
func NewPlaylist(sequence int, name, description string) *Playlist {
	now := time.Now()
	return &Playlist{
		sequence:    sequence,
		name:        name,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (p *Playlist) ID() string            { return p.id }
func (p *Playlist) Sequence() int         { return p.sequence }
func (p *Playlist) Name() string          { return p.name }
func (p *Playlist) Description() string   { return p.description }
func (p *Playlist) TrackCount() int       { return p.trackCount }
func (p *Playlist) CreatedAt() time.Time  { return p.createdAt }
func (p *Playlist) UpdatedAt() time.Time  { return p.updatedAt }
func (p *Playlist) DeletedAt() *time.Time { return p.deletedAt }

func (p *Playlist) SetID(id string)             { p.id = id }
func (p *Playlist) SetSequence(seq int)         { p.sequence = seq }
func (p *Playlist) SetName(name string)         { p.name = name }
func (p *Playlist) SetDescription(desc string)  { p.description = desc }
func (p *Playlist) SetTrackCount(n int)         { p.trackCount = n }
func (p *Playlist) SetCreatedAt(t time.Time)    { p.createdAt = t }
func (p *Playlist) SetUpdatedAt(t time.Time)    { p.updatedAt = t }
func (p *Playlist) SetDeletedAt(t *time.Time)   { p.deletedAt = t }

// Validate checks that required playlist fields are present.
func (p *Playlist) Validate() error {
	if p.name == "" {
		return fmt.Errorf("playlist name is required")
	}
	if p.sequence < 0 {
		return fmt.Errorf("playlist sequence must be non-negative")
	}
	return nil
}

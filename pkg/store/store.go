// Package store persists extracted dependency graphs.
//
// Two backends are provided:
//   - memory: in-process storage for development, testing, and the
//     single-user CLI server
//   - mongo: MongoDB-backed storage for shared deployments
//
// Graphs are stored in their flat document form together with metadata
// (id, board, timestamps) so they can be listed without deserializing
// every graph.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/portgraph/portgraph/pkg/graphio"
)

// Record is a stored graph with its metadata.
type Record struct {
	ID        string           `json:"id" bson:"_id"`
	Board     string           `json:"board,omitempty" bson:"board,omitempty"`
	Graph     graphio.Document `json:"graph" bson:"graph"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// Summary is the listing view of a record, cheap to produce because it
// omits the graph payload.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Board     string    `json:"board,omitempty" bson:"board,omitempty"`
	NodeCount int       `json:"node_count" bson:"node_count"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Store is the interface for graph persistence backends.
type Store interface {
	// Save persists a record. A record with an existing ID is replaced.
	Save(ctx context.Context, rec *Record) error

	// Load retrieves a record by ID. Returns an error with code
	// GRAPH_NOT_FOUND if no record exists.
	Load(ctx context.Context, id string) (*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all stored records, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewRecord creates a record for a graph document with a fresh ID.
func NewRecord(board string, doc graphio.Document) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Board:     board,
		Graph:     doc,
		CreatedAt: time.Now().UTC(),
	}
}

func (r *Record) summary() Summary {
	return Summary{
		ID:        r.ID,
		Board:     r.Board,
		NodeCount: len(r.Graph.Nodes),
		CreatedAt: r.CreatedAt,
	}
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/portgraph/portgraph/pkg/errors"
	"github.com/portgraph/portgraph/pkg/graphio"
)

func doc(nodes ...string) graphio.Document {
	d := graphio.Document{Sysroot: "/build/kevin"}
	for _, n := range nodes {
		d.Nodes = append(d.Nodes, graphio.Node{CPVR: n, Root: "/build/kevin"})
	}
	return d
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	rec := NewRecord("kevin", doc("cat/a-1.0", "cat/b-2.0"))
	if rec.ID == "" {
		t.Fatal("NewRecord should assign an ID")
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Board != "kevin" || len(got.Graph.Nodes) != 2 {
		t.Errorf("Load = board %q, %d nodes", got.Board, len(got.Graph.Nodes))
	}

	// Replace under the same ID.
	rec.Board = "amd64-generic"
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save replace: %v", err)
	}
	got, _ = s.Load(ctx, rec.ID)
	if got.Board != "amd64-generic" {
		t.Errorf("replaced board = %q", got.Board)
	}

	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, rec.ID); errors.GetCode(err) != errors.ErrCodeGraphNotFound {
		t.Errorf("Load after Delete: code = %v", errors.GetCode(err))
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := NewRecord("kevin", doc("cat/a-1.0"))
	a.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewRecord("amd64-generic", doc("cat/a-1.0", "cat/b-2.0"))
	b.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, rec := range []*Record{a, b} {
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List = %d records", len(list))
	}
	if list[0].ID != b.ID {
		t.Error("List should be newest first")
	}
	if list[0].NodeCount != 2 || list[1].NodeCount != 1 {
		t.Errorf("node counts = %d, %d", list[0].NodeCount, list[1].NodeCount)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec := NewRecord("kevin", doc("cat/a-1.0"))
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the caller's record must not affect the stored copy.
	rec.Board = "mutated"
	got, _ := s.Load(ctx, rec.ID)
	if got.Board != "kevin" {
		t.Errorf("stored record mutated: board = %q", got.Board)
	}
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	s := NewMemoryStore()
	err := s.Save(context.Background(), &Record{})
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("Save without ID: code = %v", errors.GetCode(err))
	}
}

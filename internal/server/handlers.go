package server

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/portgraph/portgraph/pkg/depgraph"
	"github.com/portgraph/portgraph/pkg/errors"
	"github.com/portgraph/portgraph/pkg/graphio"
	"github.com/portgraph/portgraph/pkg/render"
	"github.com/portgraph/portgraph/pkg/store"
)

// nodeView is the JSON shape of a node in query responses.
type nodeView struct {
	CPVR        string   `json:"cpvr"`
	Root        string   `json:"root"`
	SourcePaths []string `json:"source_paths,omitempty"`
}

func toViews(nodes []*depgraph.PackageNode) []nodeView {
	out := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeView{
			CPVR:        n.Info.CPVR(),
			Root:        n.Root,
			SourcePaths: slices.Clone(n.SourcePaths),
		})
	}
	return out
}

type createRequest struct {
	Board string           `json:"board,omitempty"`
	Graph graphio.Document `json:"graph"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}

	// Validate the document by building the graph before storing it.
	if _, err := graphio.ToGraph(req.Graph); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid graph document"))
		return
	}

	rec := store.NewRecord(req.Board, req.Graph)
	if err := s.store.Save(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

type extractRequest struct {
	Board string `json:"board"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "extraction is not configured on this server"))
		return
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}

	g, err := s.runner.ExtractGraph(r.Context(), req.Board)
	if err != nil {
		writeError(w, err)
		return
	}

	doc := graphio.FromGraph(g)
	doc.Board = req.Board
	rec := store.NewRecord(req.Board, doc)
	if err := s.store.Save(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadGraph fetches a stored record and rebuilds its graph.
func (s *Server) loadGraph(r *http.Request) (*depgraph.DependencyGraph, error) {
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	g, err := graphio.ToGraph(rec.Graph)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rebuild stored graph")
	}
	return g, nil
}

// rootFilter parses the ?root= query parameter.
func rootFilter(r *http.Request) (depgraph.RootType, error) {
	switch r.URL.Query().Get("root") {
	case "", "all":
		return depgraph.RootAll, nil
	case "sdk":
		return depgraph.RootSDK, nil
	case "sysroot":
		return depgraph.RootSysroot, nil
	default:
		return depgraph.RootAll, errors.New(errors.ErrCodeInvalidInput,
			"root %q must be all, sdk, or sysroot", r.URL.Query().Get("root"))
	}
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	pkg := r.URL.Query().Get("pkg")
	if err := errors.ValidatePackageSpec(pkg); err != nil {
		writeError(w, err)
		return
	}
	filter, err := rootFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}
	nodes, err := g.GetNodes(pkg, filter)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeParse, err, "parse package spec"))
		return
	}
	writeJSON(w, http.StatusOK, toViews(nodes))
}

func (s *Server) handleDeps(w http.ResponseWriter, r *http.Request) {
	pkg := r.URL.Query().Get("pkg")
	if err := errors.ValidatePackageSpec(pkg); err != nil {
		writeError(w, err)
		return
	}
	filter, err := rootFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var nodes []*depgraph.PackageNode
	if r.URL.Query().Get("reverse") == "true" {
		nodes, err = g.GetReverseDependencies(pkg, filter)
	} else {
		nodes, err = g.GetDependencies(pkg, filter)
	}
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeParse, err, "parse package spec"))
		return
	}
	writeJSON(w, http.StatusOK, toViews(nodes))
}

func (s *Server) handleIsDep(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dep, src := q.Get("dep"), q.Get("src")
	for _, spec := range []string{dep, src} {
		if err := errors.ValidatePackageSpec(spec); err != nil {
			writeError(w, err)
			return
		}
	}

	g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ok, err := g.IsDependency(dep, src, depgraph.RootAll, depgraph.RootAll, q.Get("direct") == "true")
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeParse, err, "parse package spec"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_dependency": ok})
}

func (s *Server) handleRelevant(w http.ResponseWriter, r *http.Request) {
	paths := r.URL.Query()["path"]
	if len(paths) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "at least one path parameter is required"))
		return
	}
	for _, p := range paths {
		if err := errors.ValidateSourcePath(p); err != nil {
			writeError(w, err)
			return
		}
	}

	g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}
	nodes := g.GetRelevantNodes(paths, depgraph.RootAll)
	writeJSON(w, http.StatusOK, map[string]any{
		"relevant": len(nodes) > 0,
		"nodes":    toViews(nodes),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}

	dot := render.ToDOT(g, render.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
	})

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
	case "svg":
		svg, err := render.RenderSVG(dot)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeRender, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "format %q must be dot or svg", format))
	}
}

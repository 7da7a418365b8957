package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackcanvas/pkg/buildinfo"
	"github.com/matzehuels/stackcanvas/pkg/editor"
	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/export"
	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/pagination"
	"github.com/matzehuels/stackcanvas/pkg/render"
	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// =============================================================================
// Request and response types
// =============================================================================

type createRequest struct {
	ID          string       `json:"id,omitempty" validate:"omitempty,max=128"`
	Name        string       `json:"name" validate:"required,max=256"`
	Description string       `json:"description,omitempty"`
	State       *stack.State `json:"state,omitempty"`
}

type stackResponse struct {
	ID      string      `json:"id"`
	State   stack.State `json:"state"`
	Dirty   bool        `json:"dirty"`
	CanUndo bool        `json:"can_undo"`
	CanRedo bool        `json:"can_redo"`
}

type componentRequest struct {
	ID         string                  `json:"id,omitempty"`
	Name       string                  `json:"name" validate:"required"`
	Technology string                  `json:"technology,omitempty"`
	Category   stack.Category          `json:"category,omitempty"`
	X          float64                 `json:"x"`
	Y          float64                 `json:"y"`
	Width      float64                 `json:"width,omitempty" validate:"gte=0"`
	Height     float64                 `json:"height,omitempty" validate:"gte=0"`
	Resources  *resources.Requirements `json:"resources,omitempty"`
}

func (c componentRequest) component() stack.Component {
	return stack.Component{
		ID:         c.ID,
		Name:       c.Name,
		Technology: c.Technology,
		Category:   c.Category,
		Bounds:     geom.Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height},
		Resources:  c.Resources,
	}
}

type containerRequest struct {
	Template string  `json:"template" validate:"required"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type containerResponse struct {
	Container  stack.Container      `json:"container"`
	Display    map[string]string    `json:"display"`
	Pagination pagination.State     `json:"pagination"`
	Violations resources.LimitCheck `json:"violations"`
}

type resourcesRequest struct {
	Mode   resources.Mode `json:"mode" validate:"required,oneof=auto manual"`
	CPU    string         `json:"cpu,omitempty"`
	Memory string         `json:"memory,omitempty"`
}

type pageRequest struct {
	Page int `json:"page" validate:"gte=0"`
}

type connectRequest struct {
	From string               `json:"from" validate:"required"`
	To   string               `json:"to" validate:"required"`
	Type stack.ConnectionType `json:"type,omitempty" validate:"omitempty,oneof=depends_on data_flow network"`
}

// eventRequest is the wire form of one pointer event.
type eventRequest struct {
	Type   string  `json:"type" validate:"required,oneof=down move up cancel"`
	NodeID string  `json:"node_id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type eventsRequest struct {
	Viewport *viewportRequest `json:"viewport,omitempty"`
	Events   []eventRequest   `json:"events" validate:"required,min=1,dive"`
}

type viewportRequest struct {
	Origin geom.Rect  `json:"origin"`
	Matrix [6]float64 `json:"matrix"`
}

type eventsResponse struct {
	Result *editor.DropResult `json:"result,omitempty"`
	Drag   editor.DragState   `json:"drag"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type historyResponse struct {
	Moved bool        `json:"moved"`
	State stack.State `json:"state"`
}

func (e eventRequest) event() editor.Event {
	switch e.Type {
	case "down":
		return editor.PointerDown{NodeID: e.NodeID, X: e.X, Y: e.Y}
	case "move":
		return editor.PointerMove{X: e.X, Y: e.Y}
	case "up":
		return editor.PointerUp{X: e.X, Y: e.Y}
	default:
		return editor.Cancel{}
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.templates.All())
}

func (s *Server) listStacks(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createStack(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var state stack.State
	if req.State != nil {
		state = req.State.Normalize()
	}
	state.Name = req.Name
	if req.Description != "" {
		state.Description = req.Description
	}
	doc := stack.NewDocument(state)
	if req.ID != "" {
		if err := errs.ValidateID(req.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
		doc.ID = req.ID
	}
	if err := doc.State.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	_, exists := s.sessions[doc.ID]
	s.mu.Unlock()
	if _, err := s.store.Get(r.Context(), doc.ID); exists || err == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "stack %q already exists", doc.ID))
		return
	}

	if err := s.store.Put(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	sess, err := s.startLocked(doc)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.snapshot(doc.ID, sess))
}

func (s *Server) getStack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.open(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(id, sess))
}

func (s *Server) saveStack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.open(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.save(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteStack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addComponent(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		var req componentRequest
		if err := s.decode(r, &req); err != nil {
			return 0, nil, err
		}
		id, err := sess.editor.AddComponent(req.component())
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, map[string]string{"id": id}, nil
	})
}

func (s *Server) addContainer(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		var req containerRequest
		if err := s.decode(r, &req); err != nil {
			return 0, nil, err
		}
		id, err := sess.editor.AddContainer(req.Template, geom.Point{X: req.X, Y: req.Y})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, map[string]string{"id": id}, nil
	})
}

func (s *Server) getContainer(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		c, err := sess.editor.Container(chi.URLParam(r, "cid"))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, describeContainer(c), nil
	})
}

func describeContainer(c stack.Container) containerResponse {
	return containerResponse{
		Container:  c,
		Display:    stack.DisplayProfile(c).Strings(),
		Pagination: stack.Pagination(c),
		Violations: stack.Violations(c),
	}
}

func (s *Server) setResources(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		var req resourcesRequest
		if err := s.decode(r, &req); err != nil {
			return 0, nil, err
		}
		cid := chi.URLParam(r, "cid")
		c, err := sess.editor.Container(cid)
		if err != nil {
			return 0, nil, err
		}

		var limits *resources.Limits
		if req.Mode == resources.ModeManual && (req.CPU != "" || req.Memory != "") {
			fallback := resources.Limits{CPU: c.Resources.CPU, Memory: c.Resources.Memory}
			if c.ManualLimits != nil {
				fallback = *c.ManualLimits
			}
			l := resources.ParseLimits(req.CPU, req.Memory, fallback)
			limits = &l
		}
		if _, err := sess.editor.SetResourceMode(cid, req.Mode, limits); err != nil {
			return 0, nil, err
		}
		c, err = sess.editor.Container(cid)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, describeContainer(c), nil
	})
}

func (s *Server) setPage(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		var req pageRequest
		if err := s.decode(r, &req); err != nil {
			return 0, nil, err
		}
		cid := chi.URLParam(r, "cid")
		if err := sess.editor.SetPage(cid, req.Page); err != nil {
			return 0, nil, err
		}
		c, err := sess.editor.Container(cid)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, describeContainer(c), nil
	})
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		if err := sess.editor.DeleteNode(chi.URLParam(r, "nid")); err != nil {
			return 0, nil, err
		}
		return http.StatusNoContent, nil, nil
	})
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		var req connectRequest
		if err := s.decode(r, &req); err != nil {
			return 0, nil, err
		}
		id, err := sess.editor.Connect(req.From, req.To, req.Type)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, map[string]string{"id": id}, nil
	})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		var req eventsRequest
		if err := s.decode(r, &req); err != nil {
			return 0, nil, err
		}
		if req.Viewport != nil {
			sess.editor.SetViewport(editor.Viewport{
				Origin:    req.Viewport.Origin,
				Transform: geom.TransformFromMatrix(req.Viewport.Matrix),
			})
		}
		events := make([]editor.Event, len(req.Events))
		for i, ev := range req.Events {
			events[i] = ev.event()
		}
		result, err := sess.editor.Dispatch(events...)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, eventsResponse{Result: result, Drag: sess.editor.Drag()}, nil
	})
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		moved := sess.editor.Undo()
		return http.StatusOK, historyResponse{Moved: moved, State: sess.editor.State()}, nil
	})
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) (int, any, error) {
		moved := sess.editor.Redo()
		return http.StatusOK, historyResponse{Moved: moved, State: sess.editor.State()}, nil
	})
}

func (s *Server) renderSVG(w http.ResponseWriter, r *http.Request) {
	sess, err := s.open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := s.renderer.SVG(r.Context(), sess.editor.State(), render.Options{
		Resources: r.URL.Query().Get("resources") != "false",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	sess, err := s.open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := export.Options{
		Namespace: r.URL.Query().Get("namespace"),
		Registry:  r.URL.Query().Get("registry"),
	}

	var out []byte
	switch format := chi.URLParam(r, "format"); format {
	case "kubernetes", "k8s":
		out, err = export.Kubernetes(sess.editor.State(), opts)
	case "compose":
		out, err = export.Compose(sess.editor.State(), opts)
	default:
		err = errs.New(errs.ErrCodeInvalidFormat, "unknown export format %q", format)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(out)
}

// =============================================================================
// Helpers
// =============================================================================

// withSession resolves the {id} session and writes fn's result.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session) (int, any, error)) {
	sess, err := s.open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status, body, err := fn(sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, body)
}

func (s *Server) snapshot(id string, sess *session) stackResponse {
	return stackResponse{
		ID:      id,
		State:   sess.editor.State(),
		Dirty:   sess.editor.Dirty(),
		CanUndo: sess.editor.CanUndo(),
		CanRedo: sess.editor.CanRedo(),
	}
}

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/babylog/internal/logbook"
	"github.com/nerrad567/babylog/internal/validation"
)

// logHandlers serves the CRUD endpoints of one log type. Bottles and
// diapers share this code and differ only in T, I and the collection name.
type logHandlers[T, I any] struct {
	s      *Server
	plural string
	svc    *logbook.Service[T, I]
}

func newLogHandlers[T, I any](s *Server, plural string, svc *logbook.Service[T, I]) *logHandlers[T, I] {
	return &logHandlers[T, I]{s: s, plural: plural, svc: svc}
}

func (h *logHandlers[T, I]) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
	})
}

// list handles GET /{plural}?limit=&offset=&search=.
func (h *logHandlers[T, I]) list(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		h.s.writeServiceError(w, r, err)
		return
	}

	caller := userFromContext(r.Context())
	page, err := h.svc.List(r.Context(), caller.ID, opts)
	if err != nil {
		h.s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		h.plural: page.Items,
		"count":  len(page.Items),
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// get handles GET /{plural}/{id}.
func (h *logHandlers[T, I]) get(w http.ResponseWriter, r *http.Request) {
	caller := userFromContext(r.Context())
	rec, err := h.svc.Get(r.Context(), caller.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// create handles POST /{plural}. The owner is always the caller.
func (h *logHandlers[T, I]) create(w http.ResponseWriter, r *http.Request) {
	var in I
	if err := decodeJSON(r, &in); err != nil {
		writeDecodeError(w, err, "invalid JSON body")
		return
	}

	caller := userFromContext(r.Context())
	rec, err := h.svc.Create(r.Context(), caller.ID, in)
	if err != nil {
		h.s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// update handles PUT /{plural}/{id}.
func (h *logHandlers[T, I]) update(w http.ResponseWriter, r *http.Request) {
	var in I
	if err := decodeJSON(r, &in); err != nil {
		writeDecodeError(w, err, "invalid JSON body")
		return
	}

	caller := userFromContext(r.Context())
	rec, err := h.svc.Update(r.Context(), caller.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		h.s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// delete handles DELETE /{plural}/{id} and answers 204 with no body.
func (h *logHandlers[T, I]) delete(w http.ResponseWriter, r *http.Request) {
	caller := userFromContext(r.Context())
	if err := h.svc.Delete(r.Context(), caller.ID, chi.URLParam(r, "id")); err != nil {
		h.s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listOptions reads limit, offset and search from the query string.
// Absent values are left zero for the service to default.
func listOptions(r *http.Request) (logbook.ListOptions, error) {
	q := r.URL.Query()
	opts := logbook.ListOptions{Search: q.Get("search")}

	var err error
	if opts.Limit, err = queryInt(q.Get("limit"), "limit"); err != nil {
		return opts, err
	}
	if opts.Offset, err = queryInt(q.Get("offset"), "offset"); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.Invalid(name, "must be an integer")
	}
	return n, nil
}

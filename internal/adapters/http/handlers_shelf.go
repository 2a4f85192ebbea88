package web

import (
	"errors"
	"net/http"

	"storefront/internal/application/shelf"
	domain "storefront/internal/domain/shelf"
)

// shelfResponse is the full shelf as served by GET /api/shelf.
type shelfResponse struct {
	Favorites  []string `json:"favorites"`
	Compare    []string `json:"compare"`
	Recent     []string `json:"recent"`
	CompareMax int      `json:"compare_max"`
}

// listResponse is returned by every mutation with the fresh snapshot of the touched list.
type listResponse struct {
	Status string   `json:"status"`
	Store  string   `json:"store"`
	Items  []string `json:"items"`
	Max    int      `json:"max,omitempty"`
}

type idRequest struct {
	ID string `json:"id"`
}

func (s *server) handleShelf(w http.ResponseWriter, r *http.Request) {
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shelfResponse{
		Favorites:  sh.Favorites.Snapshot(),
		Compare:    sh.Compare.Snapshot(),
		Recent:     sh.Recent.Snapshot(),
		CompareMax: sh.Compare.Max(),
	})
}

// setFromPath resolves {list} to a bounded set, writing 404 when the list
// is unknown or is not a set.
func (s *server) setFromPath(w http.ResponseWriter, r *http.Request) (*shelf.SetStore, bool) {
	list, ok := domain.ParseList(r.PathValue("list"))
	if !ok {
		http.Error(w, "unknown shelf list", http.StatusNotFound)
		return nil, false
	}
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return nil, false
	}
	set, ok := sh.Set(list)
	if !ok {
		http.Error(w, "list does not support this operation", http.StatusNotFound)
		return nil, false
	}
	return set, true
}

func decodeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req idRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return "", false
	}
	return req.ID, true
}

// writeMutationError maps a store error onto a response: ErrEmptyID is 400.
func writeMutationError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrEmptyID) {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	internalError(w, err)
}

func setResponse(set *shelf.SetStore, status string) listResponse {
	return listResponse{Status: status, Store: string(set.List()), Items: set.Snapshot(), Max: set.Max()}
}

// handleShelfAdd adds {"id"} to favorites or compare. A full compare set is 409.
func (s *server) handleShelfAdd(w http.ResponseWriter, r *http.Request) {
	set, ok := s.setFromPath(w, r)
	if !ok {
		return
	}
	id, ok := decodeID(w, r)
	if !ok {
		return
	}
	res, err := set.Add(r.Context(), id)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	status := http.StatusOK
	if res == domain.AtCapacity {
		status = http.StatusConflict
	}
	writeJSON(w, status, setResponse(set, res.String()))
}

// handleShelfToggle flips membership of {"id"}. A rejected toggle is 409.
func (s *server) handleShelfToggle(w http.ResponseWriter, r *http.Request) {
	set, ok := s.setFromPath(w, r)
	if !ok {
		return
	}
	id, ok := decodeID(w, r)
	if !ok {
		return
	}
	res, err := set.Toggle(r.Context(), id)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	status := http.StatusOK
	if res == domain.ToggleRejected {
		status = http.StatusConflict
	}
	writeJSON(w, status, setResponse(set, res.String()))
}

// handleShelfRemove deletes {id} from the set. Removing an absent id is not an error.
func (s *server) handleShelfRemove(w http.ResponseWriter, r *http.Request) {
	set, ok := s.setFromPath(w, r)
	if !ok {
		return
	}
	removed, err := set.Remove(r.Context(), r.PathValue("id"))
	if err != nil {
		writeMutationError(w, err)
		return
	}
	status := "absent"
	if removed {
		status = "removed"
	}
	writeJSON(w, http.StatusOK, setResponse(set, status))
}

// handleShelfClear empties any of the three lists.
func (s *server) handleShelfClear(w http.ResponseWriter, r *http.Request) {
	list, ok := domain.ParseList(r.PathValue("list"))
	if !ok {
		http.Error(w, "unknown shelf list", http.StatusNotFound)
		return
	}
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return
	}
	sh.Clear(r.Context(), list)
	store, _ := sh.Store(list)
	writeJSON(w, http.StatusOK, listResponse{Status: "cleared", Store: string(list), Items: store.Snapshot()})
}

// handleRecordView moves {"id"} to the front of Recently Viewed.
func (s *server) handleRecordView(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeID(w, r)
	if !ok {
		return
	}
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return
	}
	if err := sh.Recent.RecordView(r.Context(), id); err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Status: "recorded",
		Store:  string(domain.Recent),
		Items:  sh.Recent.Snapshot(),
		Max:    sh.Recent.Max(),
	})
}

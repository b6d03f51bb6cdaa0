package handler

import (
	"errors"
	"net/http"

	"taskdiary/internal/app/service"
	"taskdiary/internal/common"
	"taskdiary/internal/domain/model"
	"taskdiary/internal/domain/repository"
	"taskdiary/internal/platform/session"
	"taskdiary/internal/view"

	"github.com/go-chi/chi/v5"
)

type DiaryHandler struct {
	pages
	diaryService  *service.DiaryService
	exportService *service.ExportService
}

func NewDiaryHandler(diaryService *service.DiaryService, exportService *service.ExportService, renderer view.Renderer, flashes session.FlashStore) *DiaryHandler {
	return &DiaryHandler{
		pages:         pages{renderer: renderer, flashes: flashes},
		diaryService:  diaryService,
		exportService: exportService,
	}
}

func (h *DiaryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/diary", h.listEntries)
	r.Get("/add_diary", h.addEntryForm)
	r.Post("/add_diary", h.addEntry)
	r.Get("/edit_diary/{id}", h.editEntryForm)
	r.Post("/edit_diary/{id}", h.editEntry)
	r.Get("/delete_diary/{id}", h.deleteEntry)
	r.Get("/search_diary", h.searchEntries)
	r.Get("/export_diary", h.exportEntries)
}

func (h *DiaryHandler) listEntries(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filters := repository.DiaryListFilters{
		Date: q.Get("date"),
		Tag:  q.Get("tag"),
	}

	entries, err := h.diaryService.List(r.Context(), identity, filters)
	if err != nil {
		h.flashRedirect(w, r, "/", "An error occurred while loading diary entries.", "error")
		return
	}
	h.render(w, r, "diary", map[string]interface{}{
		"entries": entries,
		"tags":    model.CollectTags(entries),
	})
}

func (h *DiaryHandler) addEntryForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "add_diary", nil)
}

func (h *DiaryHandler) addEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/add_diary", "Invalid form submission.", "error")
		return
	}

	form := service.DiaryForm{
		Title: r.FormValue("title"),
		Entry: r.FormValue("entry"),
		Date:  r.FormValue("date"),
		Tags:  r.FormValue("tags"),
	}
	_, err := h.diaryService.Create(r.Context(), identity, form)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			h.flash(w, r, "Title and entry are required.", "error")
		} else {
			h.flash(w, r, "An error occurred while adding the diary entry.", "error")
		}
		// Redisplay keeps what the user typed.
		h.render(w, r, "add_diary", map[string]interface{}{"entry": form})
		return
	}

	h.flashRedirect(w, r, "/diary", "Diary entry added successfully!", "success")
}

func (h *DiaryHandler) editEntryForm(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	entry, err := h.diaryService.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			h.flashRedirect(w, r, "/diary", "Diary entry not found or you do not have permission to edit it.", "error")
		} else {
			h.flashRedirect(w, r, "/diary", "An error occurred while editing the diary entry.", "error")
		}
		return
	}
	h.render(w, r, "edit_diary", map[string]interface{}{"entry": entry})
}

func (h *DiaryHandler) editEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/diary", "Invalid form submission.", "error")
		return
	}

	id := chi.URLParam(r, "id")
	form := service.DiaryForm{
		Title: r.FormValue("title"),
		Entry: r.FormValue("entry"),
		Date:  r.FormValue("date"),
		Tags:  r.FormValue("tags"),
	}
	err := h.diaryService.Update(r.Context(), identity, id, form)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			h.flash(w, r, "All fields are required.", "error")
			h.render(w, r, "edit_diary", map[string]interface{}{"entry": form, "entry_id": id})
		case errors.Is(err, common.ErrNotFound):
			h.flashRedirect(w, r, "/diary", "Diary entry not found or you do not have permission to edit it.", "error")
		default:
			h.flashRedirect(w, r, "/diary", "An error occurred while editing the diary entry.", "error")
		}
		return
	}

	h.flashRedirect(w, r, "/diary", "Diary entry updated successfully!", "success")
}

func (h *DiaryHandler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	err := h.diaryService.Delete(r.Context(), identity, chi.URLParam(r, "id"))
	switch {
	case err == nil:
		h.flashRedirect(w, r, "/diary", "Diary entry deleted successfully!", "success")
	case errors.Is(err, common.ErrNotFound):
		h.flashRedirect(w, r, "/diary", "Diary entry not found or you do not have permission to delete it.", "error")
	default:
		h.flashRedirect(w, r, "/diary", "An error occurred while deleting the diary entry.", "error")
	}
}

// searchEntries is the free-text variant; an empty query falls back to the
// plain listing.
func (h *DiaryHandler) searchEntries(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		http.Redirect(w, r, "/diary", http.StatusSeeOther)
		return
	}

	entries, err := h.diaryService.Search(r.Context(), identity, query)
	if err != nil {
		h.flashRedirect(w, r, "/diary", "An error occurred while searching diary entries.", "error")
		return
	}
	h.render(w, r, "diary", map[string]interface{}{
		"entries":      entries,
		"search_query": query,
	})
}

func (h *DiaryHandler) exportEntries(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	filename, body, err := h.exportService.Diary(r.Context(), identity)
	if err != nil {
		h.flashRedirect(w, r, "/diary", "An error occurred while exporting diary entries.", "error")
		return
	}
	common.RespondWithAttachment(w, filename, body)
}

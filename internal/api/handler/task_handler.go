package handler

import (
	"errors"
	"net/http"

	"taskdiary/internal/app/service"
	"taskdiary/internal/common"
	"taskdiary/internal/domain/repository"
	"taskdiary/internal/platform/session"
	"taskdiary/internal/view"

	"github.com/go-chi/chi/v5"
)

type TaskHandler struct {
	pages
	taskService   *service.TaskService
	exportService *service.ExportService
}

func NewTaskHandler(taskService *service.TaskService, exportService *service.ExportService, renderer view.Renderer, flashes session.FlashStore) *TaskHandler {
	return &TaskHandler{
		pages:         pages{renderer: renderer, flashes: flashes},
		taskService:   taskService,
		exportService: exportService,
	}
}

func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tasks", h.listTasks)
	r.Get("/tasks/overdue", h.overdueTasks)
	r.Get("/add_task", h.addTaskForm)
	r.Post("/add_task", h.addTask)
	r.Get("/edit_task/{id}", h.editTaskForm)
	r.Post("/edit_task/{id}", h.editTask)
	r.Get("/delete_task/{id}", h.deleteTask)
	r.Post("/update_task/{id}", h.updateTaskStatus)
	r.Get("/download_tasks", h.downloadTasks)
}

func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filters := repository.TaskListFilters{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		SortBy:   q.Get("sort"),
	}

	tasks, err := h.taskService.List(r.Context(), identity, filters)
	if err != nil {
		h.flashRedirect(w, r, "/", "An error occurred while loading tasks.", "error")
		return
	}
	h.render(w, r, "tasks", map[string]interface{}{"tasks": tasks})
}

func (h *TaskHandler) overdueTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.Overdue(r.Context(), identity)
	if err != nil {
		h.flashRedirect(w, r, "/tasks", "An error occurred while loading overdue tasks.", "error")
		return
	}
	h.render(w, r, "tasks", map[string]interface{}{"tasks": tasks, "title": "Overdue Tasks"})
}

func (h *TaskHandler) addTaskForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "add_task", nil)
}

func (h *TaskHandler) addTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/add_task", "Invalid form submission.", "error")
		return
	}

	form := service.TaskForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		DueDate:     r.FormValue("due_date"),
		Priority:    r.FormValue("priority"),
	}
	_, err := h.taskService.Create(r.Context(), identity, form)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			h.flash(w, r, "All fields are required.", "error")
		} else {
			h.flash(w, r, "An error occurred while adding the task.", "error")
		}
		// Redisplay keeps what the user typed.
		h.render(w, r, "add_task", map[string]interface{}{"task": form})
		return
	}

	h.flashRedirect(w, r, "/tasks", "Task added successfully!", "success")
}

func (h *TaskHandler) editTaskForm(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			h.flashRedirect(w, r, "/tasks", "Task not found or you do not have permission to edit it.", "error")
		} else {
			h.flashRedirect(w, r, "/tasks", "An error occurred while editing the task.", "error")
		}
		return
	}
	h.render(w, r, "edit_task", map[string]interface{}{"task": task})
}

func (h *TaskHandler) editTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/tasks", "Invalid form submission.", "error")
		return
	}

	id := chi.URLParam(r, "id")
	form := service.TaskForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		DueDate:     r.FormValue("due_date"),
		Priority:    r.FormValue("priority"),
		Status:      r.FormValue("status"),
	}
	err := h.taskService.Update(r.Context(), identity, id, form)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			h.flash(w, r, "All fields are required.", "error")
			h.render(w, r, "edit_task", map[string]interface{}{"task": form, "task_id": id})
		case errors.Is(err, common.ErrNotFound):
			h.flashRedirect(w, r, "/tasks", "Task not found or you do not have permission to edit it.", "error")
		default:
			h.flashRedirect(w, r, "/tasks", "An error occurred while updating the task.", "error")
		}
		return
	}

	h.flashRedirect(w, r, "/tasks", "Task updated successfully!", "success")
}

func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	err := h.taskService.Delete(r.Context(), identity, chi.URLParam(r, "id"))
	switch {
	case err == nil:
		h.flashRedirect(w, r, "/tasks", "Task deleted successfully!", "success")
	case errors.Is(err, common.ErrNotFound):
		h.flashRedirect(w, r, "/tasks", "Task not found or you do not have permission to delete it.", "error")
	default:
		h.flashRedirect(w, r, "/tasks", "An error occurred while deleting the task.", "error")
	}
}

func (h *TaskHandler) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/tasks", "Invalid form submission.", "error")
		return
	}

	err := h.taskService.UpdateStatus(r.Context(), identity, chi.URLParam(r, "id"), r.FormValue("status"))
	switch {
	case err == nil:
		h.flashRedirect(w, r, "/tasks", "Task status updated successfully!", "success")
	case errors.Is(err, common.ErrNotFound):
		h.flashRedirect(w, r, "/tasks", "Task not found or you do not have permission to update it.", "error")
	case errors.Is(err, common.ErrValidation):
		h.flashRedirect(w, r, "/tasks", "Invalid task status.", "error")
	default:
		h.flashRedirect(w, r, "/tasks", "An error occurred while updating the task.", "error")
	}
}

func (h *TaskHandler) downloadTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	filename, body, err := h.exportService.Tasks(r.Context(), identity)
	if err != nil {
		h.flashRedirect(w, r, "/tasks", "An error occurred while downloading tasks.", "error")
		return
	}
	common.RespondWithAttachment(w, filename, body)
}

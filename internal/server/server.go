// Package server exposes the tracker over HTTP for the web UI.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rajshekhar-verma01/task-manage/internal/due"
	"github.com/rajshekhar-verma01/task-manage/internal/model"
	"github.com/rajshekhar-verma01/task-manage/internal/service"
	"github.com/rajshekhar-verma01/task-manage/internal/storage"
)

// maxRequestBodySize limits request body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

// Server routes the REST API onto the service layer.
type Server struct {
	svc    *service.Service
	logger *slog.Logger
	mux    *http.ServeMux
}

func New(svc *service.Service, logger *slog.Logger) *Server {
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/tasks/{sectionID}", s.handleListTasks)
	s.mux.HandleFunc("POST /api/tasks/{sectionID}", s.handleCreateTask)
	s.mux.HandleFunc("PATCH /api/tasks/{sectionID}/{taskID}", s.handlePatchTask)
	s.mux.HandleFunc("DELETE /api/tasks/{sectionID}/{taskID}", s.handleDeleteTask)

	s.mux.HandleFunc("GET /api/recurring-tasks/{sectionID}", s.handleListRecurringTasks)
	s.mux.HandleFunc("POST /api/recurring-tasks/{sectionID}", s.handleCreateRecurringTask)
	s.mux.HandleFunc("PATCH /api/recurring-tasks/{sectionID}/{taskID}", s.handlePatchRecurringTask)
	s.mux.HandleFunc("DELETE /api/recurring-tasks/{sectionID}/{taskID}", s.handleDeleteRecurringTask)

	s.mux.HandleFunc("GET /api/sub-goals/{taskID}", s.handleListSubGoals)
	s.mux.HandleFunc("POST /api/sub-goals/{taskID}", s.handleCreateSubGoal)
	s.mux.HandleFunc("PATCH /api/sub-goals/{taskID}/{subGoalID}", s.handlePatchSubGoal)
	s.mux.HandleFunc("DELETE /api/sub-goals/{taskID}/{subGoalID}", s.handleDeleteSubGoal)

	s.mux.HandleFunc("GET /api/categories/{sectionID}", s.handleListCategories)
	s.mux.HandleFunc("POST /api/categories/{sectionID}", s.handleAddCategory)
	s.mux.HandleFunc("DELETE /api/categories/{sectionID}/{name}", s.handleRemoveCategory)

	s.mux.HandleFunc("GET /api/blog-entries", s.handleListBlogEntries)
	s.mux.HandleFunc("POST /api/blog-entries", s.handleCreateBlogEntry)
	s.mux.HandleFunc("PATCH /api/blog-entries/{entryID}", s.handlePatchBlogEntry)
	s.mux.HandleFunc("POST /api/blog-entries/{entryID}/advance", s.handleAdvanceBlogEntry)
	s.mux.HandleFunc("DELETE /api/blog-entries/{entryID}", s.handleDeleteBlogEntry)

	s.mux.HandleFunc("GET /api/sections/{sectionID}", s.handleSectionData)

	s.mux.HandleFunc("GET /api/notifications/settings", s.handleGetNotificationSettings)
	s.mux.HandleFunc("PUT /api/notifications/settings", s.handlePutNotificationSettings)
	s.mux.HandleFunc("POST /api/notifications/check", s.handleCheckDue)
	s.mux.HandleFunc("POST /api/notifications/show", s.handleShowNotification)
}

// --- tasks ---

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	section, err := model.ParseSection(r.PathValue("sectionID"))
	if err != nil {
		s.writeError(w, r, &service.ValidationError{Errors: []string{err.Error()}})
		return
	}
	tasks, err := s.svc.Tasks(r.Context(), section)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	section, err := model.ParseSection(r.PathValue("sectionID"))
	if err != nil {
		s.writeError(w, r, &service.ValidationError{Errors: []string{err.Error()}})
		return
	}
	var task model.Task
	if !s.decode(w, r, &task) {
		return
	}
	task.Section = section
	created, err := s.svc.CreateTask(r.Context(), task)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	var patch service.TaskPatch
	if !s.decode(w, r, &patch) {
		return
	}
	task, err := s.svc.PatchTask(r.Context(), r.PathValue("taskID"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTask(r.Context(), r.PathValue("taskID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

// --- recurring tasks ---

func (s *Server) handleListRecurringTasks(w http.ResponseWriter, r *http.Request) {
	section, err := model.ParseSection(r.PathValue("sectionID"))
	if err != nil {
		s.writeError(w, r, &service.ValidationError{Errors: []string{err.Error()}})
		return
	}
	tasks, err := s.svc.RecurringTasks(r.Context(), section)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateRecurringTask(w http.ResponseWriter, r *http.Request) {
	section, err := model.ParseSection(r.PathValue("sectionID"))
	if err != nil {
		s.writeError(w, r, &service.ValidationError{Errors: []string{err.Error()}})
		return
	}
	var task model.RecurringTask
	if !s.decode(w, r, &task) {
		return
	}
	task.Section = section
	created, err := s.svc.CreateRecurringTask(r.Context(), task)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePatchRecurringTask(w http.ResponseWriter, r *http.Request) {
	var patch service.RecurringTaskPatch
	if !s.decode(w, r, &patch) {
		return
	}
	task, err := s.svc.PatchRecurringTask(r.Context(), r.PathValue("taskID"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteRecurringTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRecurringTask(r.Context(), r.PathValue("taskID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

// --- sub-goals ---

func (s *Server) handleListSubGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.SubGoals(r.Context(), r.PathValue("taskID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleCreateSubGoal(w http.ResponseWriter, r *http.Request) {
	var goal model.SubGoal
	if !s.decode(w, r, &goal) {
		return
	}
	goal.TaskID = r.PathValue("taskID")
	created, err := s.svc.AddSubGoal(r.Context(), goal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePatchSubGoal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.Status `json:"status"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.svc.UpdateSubGoalStatus(r.Context(), r.PathValue("subGoalID"), body.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

func (s *Server) handleDeleteSubGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSubGoal(r.Context(), r.PathValue("subGoalID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

// --- categories ---

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	section, err := model.ParseSection(r.PathValue("sectionID"))
	if err != nil {
		s.writeError(w, r, &service.ValidationError{Errors: []string{err.Error()}})
		return
	}
	categories, err := s.svc.Categories(r.Context(), section)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	section, err := model.ParseSection(r.PathValue("sectionID"))
	if err != nil {
		s.writeError(w, r, &service.ValidationError{Errors: []string{err.Error()}})
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.svc.AddCategory(r.Context(), section, body.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, successBody{Success: true})
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	section, err := model.ParseSection(r.PathValue("sectionID"))
	if err != nil {
		s.writeError(w, r, &service.ValidationError{Errors: []string{err.Error()}})
		return
	}
	if err := s.svc.RemoveCategory(r.Context(), section, r.PathValue("name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

// --- blog entries ---

func (s *Server) handleListBlogEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.BlogEntries(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateBlogEntry(w http.ResponseWriter, r *http.Request) {
	var entry model.BlogEntry
	if !s.decode(w, r, &entry) {
		return
	}
	created, err := s.svc.CreateBlogEntry(r.Context(), entry)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePatchBlogEntry(w http.ResponseWriter, r *http.Request) {
	var patch service.BlogEntryPatch
	if !s.decode(w, r, &patch) {
		return
	}
	entry, err := s.svc.PatchBlogEntry(r.Context(), r.PathValue("entryID"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleAdvanceBlogEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.svc.AdvanceBlogEntry(r.Context(), r.PathValue("entryID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteBlogEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBlogEntry(r.Context(), r.PathValue("entryID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

// --- sections ---

func (s *Server) handleSectionData(w http.ResponseWriter, r *http.Request) {
	section, err := model.ParseSection(r.PathValue("sectionID"))
	if err != nil {
		s.writeError(w, r, &service.ValidationError{Errors: []string{err.Error()}})
		return
	}
	data, err := s.svc.SectionData(r.Context(), section)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// --- notifications ---

func (s *Server) handleGetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.NotificationSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.NotificationSettings
	if !s.decode(w, r, &settings) {
		return
	}
	if err := s.svc.SaveNotificationSettings(r.Context(), settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

func (s *Server) handleCheckDue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Section  model.Section `json:"section"`
		Category string        `json:"category"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	items, err := s.svc.CheckDueNow(r.Context(), due.Scope{Section: body.Section, Category: body.Category})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleShowNotification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Title == "" {
		s.writeError(w, r, &service.ValidationError{Errors: []string{"notification title is required"}})
		return
	}
	if err := s.svc.ShowNotification(body.Title, body.Body); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

// --- helpers ---

type successBody struct {
	Success bool `json:"success"`
}

type errorBody struct {
	Error string `json:"error"`
}

// decode reads a JSON request body into v. On failure it writes a 400 and
// reports false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, service.ValidationError{
			Errors: []string{"invalid request body: " + err.Error()},
		})
		return false
	}
	return true
}

// writeError maps service errors onto the REST taxonomy: validation to 400
// with an error list, missing identifiers to 404, anything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr)
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

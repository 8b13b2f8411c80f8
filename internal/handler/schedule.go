package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paiban/shiftplan/internal/metrics"
	"github.com/paiban/shiftplan/pkg/apperrors"
	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/logger"
	"github.com/paiban/shiftplan/pkg/scheduling"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/validate"
)

// SaveFunc persists a finished ScheduleResult; the HTTP layer is agnostic
// to whether that means Postgres, a file, or nothing at all.
type SaveFunc func(weekStart time.Time, result scheduling.ScheduleResult) error

// ScheduleHandler exposes schedule()/validate()/staffingStatus() over JSON.
type ScheduleHandler struct {
	save    SaveFunc
	log     *logger.SchedulerLogger
	metrics *metrics.Service
}

// NewScheduleHandler builds a handler. save may be nil to skip persistence.
// metrics may be nil; a nil *metrics.Service is a documented no-op receiver.
func NewScheduleHandler(save SaveFunc, metricsService *metrics.Service) *ScheduleHandler {
	return &ScheduleHandler{save: save, log: logger.NewSchedulerLogger(), metrics: metricsService}
}

// GenerateRequest is the wire request for POST /api/v1/schedule/generate.
type GenerateRequest struct {
	WeekStart time.Time       `json:"week_start"`
	Staff     []StaffDTO      `json:"staff"`
	Shifts    []OccurrenceDTO `json:"shifts"`
}

// GenerateResponse is the wire response for POST /api/v1/schedule/generate.
type GenerateResponse struct {
	Success     bool                `json:"success"`
	Assignments map[string][]string `json:"assignments,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
	Errors      []string            `json:"errors,omitempty"`
	Algorithm   string              `json:"algorithm,omitempty"`
	Objective   *float64            `json:"objective,omitempty"`
	Duration    string              `json:"duration"`
}

// Generate handles POST /api/v1/schedule/generate.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.New(apperrors.CodeInvalidInput, "method not allowed"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON: "+err.Error()))
		return
	}

	staff := make([]model.StaffMember, len(req.Staff))
	for i, s := range req.Staff {
		staff[i] = staffFromDTO(s)
	}
	shifts := make([]model.ShiftOccurrence, len(req.Shifts))
	for i, o := range req.Shifts {
		shifts[i] = occurrenceFromDTO(o)
	}

	start := time.Now()
	h.log.StartSchedule(req.WeekStart.Format("2006-01-02"), len(staff), len(shifts))

	result := scheduling.Schedule(req.WeekStart, shifts, staff, catalog.Default)
	duration := time.Since(start)

	if !result.Success {
		logger.Error().Str("reason", firstOrEmpty(result.Errors)).Msg("schedule failed")
		h.metrics.ObserveSchedule("error", false, duration, 0)
		writeJSON(w, http.StatusUnprocessableEntity, GenerateResponse{
			Success:  false,
			Errors:   result.Errors,
			Duration: duration.String(),
		})
		return
	}

	h.log.ScheduleComplete(req.WeekStart.Format("2006-01-02"), duration, string(result.Algorithm), countAssignments(result.Assignments))
	h.metrics.ObserveSchedule(string(result.Algorithm), true, duration, countAssignments(result.Assignments))

	if h.save != nil {
		if err := h.save(req.WeekStart, result); err != nil {
			logger.WithError(err).Msg("failed to persist schedule run")
		}
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success:     true,
		Assignments: assignmentMapToDTO(result.Assignments),
		Warnings:    result.Warnings,
		Algorithm:   string(result.Algorithm),
		Objective:   result.Objective,
		Duration:    duration.String(),
	})
}

// ValidateRequest is the wire request for POST /api/v1/schedule/validate.
type ValidateRequest struct {
	TargetStaffID      string          `json:"target_staff_id"`
	TargetOccurrenceID string          `json:"target_occurrence_id"`
	Staff              []StaffDTO      `json:"staff"`
	Shifts             []OccurrenceDTO `json:"shifts"`
	EvaluationDate     time.Time       `json:"evaluation_date"`
	Mode               string          `json:"mode"` // check-assignment/validate-existing
}

// ValidateResponse is the wire response for POST /api/v1/schedule/validate.
type ValidateResponse struct {
	Violations []ConstraintViolationDTO `json:"violations"`
}

// ConstraintViolationDTO is the wire form of model.ConstraintViolation.
type ConstraintViolationDTO struct {
	ID        string `json:"id"`
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
}

// Validate handles POST /api/v1/schedule/validate.
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.New(apperrors.CodeInvalidInput, "method not allowed"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON: "+err.Error()))
		return
	}

	staff := make([]model.StaffMember, len(req.Staff))
	var target model.StaffMember
	found := false
	for i, s := range req.Staff {
		staff[i] = staffFromDTO(s)
		if s.ID == req.TargetStaffID {
			target = staff[i]
			found = true
		}
	}
	if !found {
		writeError(w, apperrors.InvalidInput("target_staff_id", "not found among staff"))
		return
	}

	shifts := make([]model.ShiftOccurrence, len(req.Shifts))
	var targetOcc model.ShiftOccurrence
	foundOcc := false
	for i, o := range req.Shifts {
		shifts[i] = occurrenceFromDTO(o)
		if o.ID == req.TargetOccurrenceID {
			targetOcc = shifts[i]
			foundOcc = true
		}
	}
	if !foundOcc {
		writeError(w, apperrors.InvalidInput("target_occurrence_id", "not found among shifts"))
		return
	}

	mode := validate.ModeCheckAssignment
	if req.Mode == string(validate.ModeValidateExisting) {
		mode = validate.ModeValidateExisting
	}

	ctx := validate.NewContext(target, targetOcc, staff, shifts, req.EvaluationDate, mode, catalog.Default)
	violations := scheduling.Validate(ctx)

	out := make([]ConstraintViolationDTO, len(violations))
	for i, v := range violations {
		h.metrics.ObserveConstraintCheck(string(v.Type), string(v.Severity))
		out[i] = ConstraintViolationDTO{
			ID:        v.ID,
			StaffID:   string(v.StaffID),
			StaffName: v.StaffName,
			Type:      string(v.Type),
			Severity:  string(v.Severity),
			Message:   v.Message,
		}
	}

	writeJSON(w, http.StatusOK, ValidateResponse{Violations: out})
}

// StaffingStatusRequest is the wire request for POST /api/v1/schedule/status.
type StaffingStatusRequest struct {
	OccurrenceID   string          `json:"occurrence_id"`
	Shifts         []OccurrenceDTO `json:"shifts"`
	Staff          []StaffDTO      `json:"staff"`
	Traits         []TraitDTO      `json:"traits"`
	EvaluationDate time.Time       `json:"evaluation_date"`
}

// StaffingStatusResponse is the wire response for POST /api/v1/schedule/status.
type StaffingStatusResponse struct {
	Status               string   `json:"status"`
	Color                string   `json:"color"`
	Message              string   `json:"message"`
	MissingTraits        []string `json:"missing_traits,omitempty"`
	ConstraintViolations []ConstraintViolationDTO `json:"constraint_violations,omitempty"`
}

// StaffingStatus handles POST /api/v1/schedule/status.
func (h *ScheduleHandler) StaffingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.New(apperrors.CodeInvalidInput, "method not allowed"))
		return
	}

	var req StaffingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON: "+err.Error()))
		return
	}

	staff := make([]model.StaffMember, len(req.Staff))
	for i, s := range req.Staff {
		staff[i] = staffFromDTO(s)
	}
	shifts := make([]model.ShiftOccurrence, len(req.Shifts))
	var target model.ShiftOccurrence
	found := false
	for i, o := range req.Shifts {
		shifts[i] = occurrenceFromDTO(o)
		if o.ID == req.OccurrenceID {
			target = shifts[i]
			found = true
		}
	}
	if !found {
		writeError(w, apperrors.InvalidInput("occurrence_id", "not found among shifts"))
		return
	}
	traits := make([]model.Trait, len(req.Traits))
	for i, t := range req.Traits {
		traits[i] = traitFromDTO(t)
	}

	res := scheduling.StaffingStatus(target, target.AssignedStaff, traits, shifts, staff, req.EvaluationDate, catalog.Default)

	missing := make([]string, len(res.MissingTraits))
	for i, t := range res.MissingTraits {
		missing[i] = string(t)
	}
	violations := make([]ConstraintViolationDTO, len(res.ConstraintViolations))
	for i, v := range res.ConstraintViolations {
		violations[i] = ConstraintViolationDTO{
			ID:        v.ID,
			StaffID:   string(v.StaffID),
			StaffName: v.StaffName,
			Type:      string(v.Type),
			Severity:  string(v.Severity),
			Message:   v.Message,
		}
	}

	writeJSON(w, http.StatusOK, StaffingStatusResponse{
		Status:               string(res.Status),
		Color:                string(res.Color),
		Message:              res.Message,
		MissingTraits:        missing,
		ConstraintViolations: violations,
	})
}

func countAssignments(a model.AssignmentMap) int {
	n := 0
	for _, ids := range a {
		n += len(ids)
	}
	return n
}

func firstOrEmpty(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	return errs[0]
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err *apperrors.AppError) {
	writeJSON(w, err.HTTPStatus, map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
	})
}

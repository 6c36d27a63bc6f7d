package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/service"
	"github.com/MKhiriev/go-list-sync/internal/utils"
	"github.com/MKhiriev/go-list-sync/models"
)

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Str("func", "*Handler.createGroup").Msg(ErrNoAccountID.Error())
		utils.WriteError(w, ErrNoAccountID.Error(), http.StatusUnauthorized)
		return
	}

	var body models.CreateGroupBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.createGroup").Msg(ErrInvalidJSON.Error())
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	group, err := h.services.SyncManager.CreateGroup(ctx, models.CreateGroupRequest{
		Name: body.Name,
		Mode: body.Mode,
		Owner: models.NewMember{
			AccountID:   accountID,
			DisplayName: body.DisplayName,
			List:        body.List,
		},
		OwnerAsMaster: body.OwnerAsMaster,
	})
	if err != nil {
		writeServiceError(w, r, err, "error creating group")
		return
	}

	utils.WriteJSON(w, group, http.StatusCreated)
}

func (h *Handler) joinGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		log.Error().Str("func", "*Handler.joinGroup").Msg(ErrNoAccountID.Error())
		utils.WriteError(w, ErrNoAccountID.Error(), http.StatusUnauthorized)
		return
	}

	var body models.JoinGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.joinGroup").Msg(ErrInvalidJSON.Error())
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.services.SyncManager.JoinGroup(ctx, body.Code, models.NewMember{
		AccountID:   accountID,
		DisplayName: body.DisplayName,
		List:        body.List,
	})
	if err != nil {
		writeServiceError(w, r, err, "error joining group")
		return
	}

	utils.WriteJSON(w, member, http.StatusCreated)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		utils.WriteError(w, ErrNoAccountID.Error(), http.StatusUnauthorized)
		return
	}

	groups, err := h.services.SyncManager.ListGroupsForAccount(ctx, accountID)
	if err != nil {
		writeServiceError(w, r, err, "error listing groups")
		return
	}
	if groups == nil {
		groups = []models.SyncGroup{}
	}

	utils.WriteJSON(w, groups, http.StatusOK)
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	group, _, ok := h.callerGroup(w, r)
	if !ok {
		return
	}

	utils.WriteJSON(w, group, http.StatusOK)
}

func (h *Handler) getGroupHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.WriteError(w, ErrInvalidLimit.Error(), http.StatusBadRequest)
			return
		}
		limit = n
	}

	group, _, ok := h.callerGroup(w, r)
	if !ok {
		return
	}

	history, err := h.services.SyncManager.History(r.Context(), group.ID, limit)
	if err != nil {
		writeServiceError(w, r, err, "error loading sync history")
		return
	}
	if history == nil {
		history = []models.SyncOperationResult{}
	}

	utils.WriteJSON(w, history, http.StatusOK)
}

// setGroupMode changes the mode of a group. While a MASTER_SLAVE group has a
// master only the master's account may do so.
func (h *Handler) setGroupMode(w http.ResponseWriter, r *http.Request) {
	group, caller, ok := h.callerGroup(w, r)
	if !ok {
		return
	}

	var body models.SetModeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.setGroupMode").Msg(ErrInvalidJSON.Error())
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	if group.Mode == models.ModeMasterSlave && group.MasterMemberID != nil && !group.IsMaster(caller.ID) {
		writeServiceError(w, r, fmt.Errorf("%w: only the master may change the mode", service.ErrForbidden), "mode change refused")
		return
	}

	updated, err := h.services.SyncManager.SetMode(r.Context(), group.ID, body)
	if err != nil {
		writeServiceError(w, r, err, "error changing group mode")
		return
	}

	utils.WriteJSON(w, updated, http.StatusOK)
}

// removeMember lets a member leave, or the master remove another member.
func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil {
		utils.WriteError(w, "invalid member id", http.StatusBadRequest)
		return
	}

	group, caller, ok := h.callerGroup(w, r)
	if !ok {
		return
	}

	if caller.ID != memberID && !group.IsMaster(caller.ID) {
		writeServiceError(w, r, fmt.Errorf("%w: cannot remove member %d", service.ErrForbidden, memberID), "member removal refused")
		return
	}

	if err := h.services.SyncManager.LeaveGroup(r.Context(), group.ID, memberID); err != nil {
		writeServiceError(w, r, err, "error removing member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	group, _, ok := h.callerGroup(w, r)
	if !ok {
		return
	}

	if err := h.services.SyncManager.TriggerManualSync(r.Context(), group.ID); err != nil {
		writeServiceError(w, r, err, "error triggering sync")
		return
	}

	utils.WriteJSON(w, models.SyncTriggerResponse{
		GroupID:  group.ID,
		Accepted: true,
		Message:  "sync started",
	}, http.StatusAccepted)
}

// callerGroup loads the group named by the {groupID} URL parameter and the
// caller's membership in it. When ok is false the response was written.
func (h *Handler) callerGroup(w http.ResponseWriter, r *http.Request) (models.SyncGroup, models.Member, bool) {
	ctx := r.Context()

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		utils.WriteError(w, ErrNoAccountID.Error(), http.StatusUnauthorized)
		return models.SyncGroup{}, models.Member{}, false
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil || groupID <= 0 {
		utils.WriteError(w, ErrInvalidGroupID.Error(), http.StatusBadRequest)
		return models.SyncGroup{}, models.Member{}, false
	}

	group, member, err := h.membership(ctx, groupID, accountID)
	if err != nil {
		writeServiceError(w, r, err, "group access refused")
		return models.SyncGroup{}, models.Member{}, false
	}
	return group, member, true
}

func (h *Handler) membership(ctx context.Context, groupID int64, accountID string) (models.SyncGroup, models.Member, error) {
	group, err := h.services.SyncManager.GetGroup(ctx, groupID)
	if err != nil {
		return models.SyncGroup{}, models.Member{}, err
	}
	for _, m := range group.Members {
		if m.AccountID == accountID {
			return group, m, nil
		}
	}
	return models.SyncGroup{}, models.Member{}, fmt.Errorf("%w: group %d", service.ErrForbidden, groupID)
}

/*
users.go - Account and authentication endpoints

PURPOSE:

	Login, public registration, self-service profile, and the staff-side
	account administration. Authorization decisions live in the accounts
	service; these handlers only shuttle the Principal through.

ENDPOINTS:

	POST   /api/users/register         Public registration
	GET    /api/users/me               Own profile
	PATCH  /api/users/me               Update own profile
	GET    /api/users                  List accounts (staff)
	GET    /api/users/{id}             Get account (staff)
	PATCH  /api/users/{id}             Update account (staff)
	DELETE /api/users/{id}             Delete account (staff, no superusers)
	POST   /api/users/{id}/activate    Enable login (superuser, not self)
	POST   /api/users/{id}/deactivate  Disable login (superuser, not self)
	POST   /api/users/{id}/set-password  Change password (superuser or self)

SEE ALSO:
  - accounts/service.go: The authorization rules enforced here
  - auth.go: Token issuance and the Principal middleware
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/workforce/accounts"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := h.Accounts.Register(r.Context(), accounts.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Confirm:   req.Confirm,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(account))
}

func (h *Handler) GetSelf(w http.ResponseWriter, r *http.Request) {
	account, err := h.Accounts.Self(r.Context(), principalFrom(r.Context()))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

func (h *Handler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	var req ProfilePatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := h.Accounts.UpdateSelf(r.Context(), principalFrom(r.Context()), accounts.ProfilePatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Accounts.List(r.Context(), principalFrom(r.Context()))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]AccountDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, toAccountDTO(&list[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.Accounts.Get(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req ProfilePatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := h.Accounts.Update(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), accounts.ProfilePatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Delete(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Activate(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "activated"})
}

func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Deactivate(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deactivated"})
}

func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req SetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.Accounts.SetPassword(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), req.Password, req.Confirm)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "password updated"})
}

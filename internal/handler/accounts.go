package handler

import (
	"net/http"

	"github.com/honeynil/PetAdoptService/internal/access"
	service "github.com/honeynil/PetAdoptService/internal/services"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/shopspring/decimal"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		PhoneNumber string `json:"phone_number"`
		Address     string `json:"address"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionDelete)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.auth.Logout(r.Context(), actor.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.auth.Me(r.Context(), actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(profile))
}

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	wallet, err := h.wallets.Get(r.Context(), actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWalletResponse(wallet))
}

func (h *Handler) TopUpWallet(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionCreate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	wallet, err := h.wallets.TopUp(r.Context(), actor.UserID, req.Balance)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWalletResponse(wallet))
}

func (h *Handler) WalletHistory(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	txs, err := h.wallets.History(r.Context(), actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, transactionResponse{
			ID:        tx.ID,
			Amount:    money(tx.Amount),
			Type:      string(tx.Type),
			RelatedID: tx.RelatedID,
			CreatedAt: tx.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListWallets(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOnly, access.ActionRead); err != nil {
		h.writeError(w, r, err)
		return
	}

	wallets, err := h.wallets.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]adminWalletResponse, 0, len(wallets))
	for i := range wallets {
		resp = append(resp, newAdminWalletResponse(&wallets[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetWallet sets the absolute balance of the user given by id.
func (h *Handler) SetWallet(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOnly, access.ActionCreate); err != nil {
		h.writeError(w, r, err)
		return
	}

	var req struct {
		ID      int64            `json:"id"`
		Balance *decimal.Decimal `json:"balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Balance == nil {
		h.writeError(w, r, pkgerrors.ErrInvalidInput.Withf("balance is required"))
		return
	}

	wallet, err := h.wallets.AdminSet(r.Context(), req.ID, *req.Balance)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAdminWalletResponse(wallet))
}

package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"gridview/internal/apiclient"
	"gridview/pkg/platform/sentinel"
)

// reservationsData feeds the reservations template.
type reservationsData struct {
	Error  string
	Notice string
}

func (h *Handler) handleReservationsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.views.renderPage(w, http.StatusOK, "reservations", reservationsData{
		Error:  q.Get("error"),
		Notice: q.Get("notice"),
	})
}

func (h *Handler) handleAddReservation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectReservations(w, r, "", "The submitted form could not be read.")
		return
	}

	req := apiclient.AddReservationRequest{
		SpaceID:        r.PostFormValue("space_id"),
		StartTimestamp: r.PostFormValue("start_timestamp"),
		EndTimestamp:   r.PostFormValue("end_timestamp"),
	}
	resp, err := h.api.AddReservation(r.Context(), req)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnauthenticated) {
			http.Redirect(w, r, signInWithResume(r), http.StatusSeeOther)
			return
		}
		h.logger.Warn("reservation add failed", "space_id", req.SpaceID, "error", err)
		h.redirectReservations(w, r, "", reservationFailureMessage(err))
		return
	}

	notice := resp.Message
	if notice == "" {
		notice = fmt.Sprintf("Reserved space %s (reservation %s).", req.SpaceID, resp.ID)
	}
	h.redirectReservations(w, r, notice, "")
}

func (h *Handler) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectReservations(w, r, "", "The submitted form could not be read.")
		return
	}

	req := apiclient.DeleteReservationRequest{
		ChargerID: r.PostFormValue("charger_id"),
		TimeBlock: r.PostFormValue("time_block"),
	}
	resp, err := h.api.DeleteReservation(r.Context(), req)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnauthenticated) {
			http.Redirect(w, r, signInWithResume(r), http.StatusSeeOther)
			return
		}
		h.logger.Warn("reservation delete failed", "charger_id", req.ChargerID, "error", err)
		h.redirectReservations(w, r, "", reservationFailureMessage(err))
		return
	}

	notice := resp.Message
	if notice == "" {
		notice = fmt.Sprintf("Released charger %s for %s.", req.ChargerID, req.TimeBlock)
	}
	h.redirectReservations(w, r, notice, "")
}

// redirectReservations bounces back to the page carrying the outcome in the
// query string, so a refresh never resubmits the form.
func (h *Handler) redirectReservations(w http.ResponseWriter, r *http.Request, notice, errMsg string) {
	q := url.Values{}
	if notice != "" {
		q.Set("notice", notice)
	}
	if errMsg != "" {
		q.Set("error", errMsg)
	}
	target := "/reservations"
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// reservationFailureMessage surfaces the backend's message when it sent
// one, otherwise a generic line.
func reservationFailureMessage(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "The reservation service is unavailable right now."
}

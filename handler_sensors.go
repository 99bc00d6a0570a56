package utmcsensors

import (
	"net/http"
)

func queryParams(r *http.Request) map[string]string {
	params := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

func (h *handler) handleBearings(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType(format))
		q, err := parseSensorQuery(queryParams(r))
		if err != nil {
			writeError(w, http.StatusBadRequest, format, err.Error())
			return
		}
		lookup, err := h.svc.FindSensorDirection(r.Context())
		if err != nil {
			h.logger.Error("failed to build sensor bearings", "err", err)
			writeError(w, http.StatusInternalServerError, format, err.Error())
			return
		}
		buf, err := RenderLookup(q.filterLookup(lookup), format)
		if err != nil {
			writeError(w, http.StatusInternalServerError, format, err.Error())
			return
		}
		_, _ = w.Write(buf)
	}
}

func (h *handler) handleCurrent(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType(format))
		q, err := parseSensorQuery(queryParams(r))
		if err != nil {
			writeError(w, http.StatusBadRequest, format, err.Error())
			return
		}
		snaps, err := h.svc.AllCurrentSensorData(r.Context())
		if err != nil {
			h.logger.Error("failed to build sensor snapshot", "err", err)
			writeError(w, http.StatusInternalServerError, format, err.Error())
			return
		}
		buf, err := RenderSnapshots(q.filterSnapshots(snaps), format)
		if err != nil {
			writeError(w, http.StatusInternalServerError, format, err.Error())
			return
		}
		_, _ = w.Write(buf)
	}
}

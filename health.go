package utmcsensors

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status                string `json:"status"`
	LookupCacheAgeSeconds int64  `json:"lookup_cache_age_seconds"`
	SnapshotAgeSeconds    int64  `json:"snapshot_cache_age_seconds"`
}

// -1 when the cache file does not exist
func ageSeconds(d time.Duration) int64 {
	if d < 0 {
		return -1
	}
	return int64(d / time.Second)
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	lookupAge, snapAge := h.svc.CacheAges()
	resp := healthResponse{
		Status:                "ok",
		LookupCacheAgeSeconds: ageSeconds(lookupAge),
		SnapshotAgeSeconds:    ageSeconds(snapAge),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

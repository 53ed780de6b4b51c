// internal/service/promotion/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"promo/internal/service/promotion/application"
	"promo/internal/service/promotion/domain"
)

// PromotionHandler 封装了 promotion 服务的 HTTP 处理器
type PromotionHandler struct {
	promotionSvc     *application.PromotionService
	participationSvc *application.ParticipationService
	querySvc         *application.ParticipationQueryService
	limiter          *PerIPLimiter
}

func NewPromotionHandler(
	promotionSvc *application.PromotionService,
	participationSvc *application.ParticipationService,
	querySvc *application.ParticipationQueryService,
	limiter *PerIPLimiter,
) *PromotionHandler {
	return &PromotionHandler{
		promotionSvc:     promotionSvc,
		participationSvc: participationSvc,
		querySvc:         querySvc,
		limiter:          limiter,
	}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *PromotionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /promotions", h.createPromotion)
	mux.HandleFunc("GET /promotions/{id}", h.getPromotion)
	mux.HandleFunc("POST /promotions/{id}/start", h.startPromotion)
	mux.HandleFunc("POST /promotions/{id}/end", h.endPromotion)
	mux.HandleFunc("GET /promotions/{id}/status", h.getPromotionStatus)
	mux.HandleFunc("POST /promotions/{id}/join", h.limiter.Middleware(h.joinPromotion))
	mux.HandleFunc("GET /promotions/{id}/winners", h.getWinners)
	mux.HandleFunc("GET /promotions/{id}/participations/{userId}", h.getParticipationResult)
}

func (h *PromotionHandler) createPromotion(w http.ResponseWriter, r *http.Request) {
	var req application.CreatePromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.promotionSvc.CreatePromotion(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *PromotionHandler) getPromotion(w http.ResponseWriter, r *http.Request) {
	resp, err := h.promotionSvc.GetPromotion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PromotionHandler) startPromotion(w http.ResponseWriter, r *http.Request) {
	resp, err := h.promotionSvc.StartPromotion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PromotionHandler) endPromotion(w http.ResponseWriter, r *http.Request) {
	resp, err := h.promotionSvc.EndPromotion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PromotionHandler) getPromotionStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.promotionSvc.GetPromotionStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type joinRequest struct {
	UserID string `json:"userId"`
}

type joinResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

func (h *PromotionHandler) joinPromotion(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.participationSvc.Join(
		r.Context(),
		r.PathValue("id"),
		req.UserID,
		clientIP(r),
		r.UserAgent(),
	)
	if err != nil {
		joinResults.WithLabelValues(joinResultLabel(err)).Inc()
		writeError(w, err)
		return
	}

	joinResults.WithLabelValues("accepted").Inc()
	writeJSON(w, http.StatusOK, joinResponse{
		Success:       true,
		Message:       "joined the waiting queue",
		QueuePosition: result.QueuePosition,
	})
}

func (h *PromotionHandler) getWinners(w http.ResponseWriter, r *http.Request) {
	resp, err := h.querySvc.GetWinners(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PromotionHandler) getParticipationResult(w http.ResponseWriter, r *http.Request) {
	resp, err := h.querySvc.GetParticipationResult(r.Context(), r.PathValue("id"), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError 把领域错误映射为 HTTP 状态码。
// 四种参与结果都是预期内的业务应答，不是服务端故障。
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPromotionNotFound), errors.Is(err, domain.ErrParticipationNotFound):
		writeJSON(w, http.StatusNotFound, joinResponse{Success: false, Message: err.Error()})
	case errors.Is(err, domain.ErrPromotionNotAvailable), errors.Is(err, domain.ErrInvalidPromotion), errors.Is(err, domain.ErrInvalidStateTransition):
		writeJSON(w, http.StatusBadRequest, joinResponse{Success: false, Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyJoined):
		writeJSON(w, http.StatusConflict, joinResponse{Success: false, Message: err.Error()})
	case errors.Is(err, domain.ErrQueueFull):
		writeJSON(w, http.StatusTooManyRequests, joinResponse{Success: false, Message: err.Error()})
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func joinResultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrPromotionNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrPromotionNotAvailable):
		return "not_available"
	case errors.Is(err, domain.ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, domain.ErrQueueFull):
		return "queue_full"
	default:
		return "error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

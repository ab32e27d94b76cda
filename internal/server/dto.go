package server

import (
	"encoding/json"

	"binsight/internal/domain"
)

// Request payloads

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateAdminRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" format:"email"`
	Password string `json:"password"`
}

type RecordDisposalRequest struct {
	AnalyzedCategory string `json:"analyzed_category" enum:"compost,recyclage,poubelle,autre,erreur"`
	BinCategory      string `json:"bin_category" enum:"compost,recyclage,poubelle,autre"`
}

type DisposalViewsRequest struct {
	IDs []string `json:"ids"`
}

type CreateNotificationRequest struct {
	BinCategory string `json:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	AdminID     string `json:"admin_id"`
}

type SetBinFullRequest struct {
	IsFull bool `json:"is_full"`
}

// Response payloads

type LoginResponse struct {
	Token string `json:"token"`
}

type AdminResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type DisposalResponse struct {
	WasteItemID      string `json:"waste_item_id"`
	AnalyzedCategory string `json:"analyzed_category" enum:"compost,recyclage,poubelle,autre,erreur"`
	BinCategory      string `json:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	DisposedAt       string `json:"disposed_at"`
}

type StatisticResponse struct {
	BinCategory string  `json:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	Total       int     `json:"total"`
	Ratio       float64 `json:"ratio"`
}

type NotificationResponse struct {
	BinCategory string `json:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	AdminID     string `json:"admin_id"`
	IsFull      bool   `json:"is_full"`
	NotifSent   bool   `json:"notif_sent"`
	CreatedAt   string `json:"created_at" format:"date-time"`
	UpdatedAt   string `json:"updated_at" format:"date-time"`
}

type ClassifyResponse struct {
	Category string `json:"category" enum:"compost,recyclage,poubelle,autre,erreur"`
}

type EventResponse struct {
	ID         int64          `json:"id"`
	TS         string         `json:"ts" format:"date-time"`
	Type       string         `json:"type"`
	EntityKind string         `json:"entity_kind"`
	EntityID   string         `json:"entity_id,omitempty"`
	ActorID    string         `json:"actor_id"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Converters

func adminResponse(a domain.Admin) AdminResponse {
	return AdminResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

func disposalResponse(v domain.DisposalView) DisposalResponse {
	return DisposalResponse{
		WasteItemID:      v.WasteItemID,
		AnalyzedCategory: string(v.AnalyzedCategory),
		BinCategory:      string(v.BinCategory),
		DisposedAt:       v.DisposedAt,
	}
}

func statisticResponse(s domain.Statistic) StatisticResponse {
	return StatisticResponse{
		BinCategory: string(s.BinCategory),
		Total:       s.Total,
		Ratio:       s.Ratio,
	}
}

func notificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		BinCategory: string(n.BinCategory),
		AdminID:     n.AdminID,
		IsFull:      n.IsFull,
		NotifSent:   n.NotifSent,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func eventResponse(evt domain.Event) EventResponse {
	var payload map[string]any
	if evt.Payload != "" {
		_ = json.Unmarshal([]byte(evt.Payload), &payload)
	}
	return EventResponse{
		ID:         evt.ID,
		TS:         evt.TS,
		Type:       evt.Type,
		EntityKind: evt.EntityKind,
		EntityID:   evt.EntityID,
		ActorID:    evt.ActorID,
		Payload:    payload,
	}
}

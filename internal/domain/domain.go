package domain

type WasteItem struct {
	ID               string           `json:"id"`
	AnalyzedCategory AnalyzedCategory `json:"analyzed_category" enum:"compost,recyclage,poubelle,autre,erreur"`
	CreatedAt        string           `json:"created_at" format:"date-time"`
}

type DisposalTime struct {
	WasteItemID string `json:"waste_item_id"`
	DisposedAt  string `json:"disposed_at"`
}

type Verification struct {
	WasteItemID string      `json:"waste_item_id"`
	BinCategory BinCategory `json:"bin_category" enum:"compost,recyclage,poubelle,autre"`
}

type Statistic struct {
	BinCategory BinCategory `json:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	Total       int         `json:"total"`
	Ratio       float64     `json:"ratio"`
}

type Notification struct {
	BinCategory BinCategory `json:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	AdminID     string      `json:"admin_id"`
	IsFull      bool        `json:"is_full"`
	NotifSent   bool        `json:"notif_sent"`
	CreatedAt   string      `json:"created_at" format:"date-time"`
	UpdatedAt   string      `json:"updated_at" format:"date-time"`
}

type Admin struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"created_at" format:"date-time"`
}

// DisposalView is the denormalized read model for one disposal event:
// the waste item joined with its verification and disposal time. It is
// computed on demand and never persisted.
type DisposalView struct {
	WasteItemID      string           `json:"waste_item_id"`
	AnalyzedCategory AnalyzedCategory `json:"analyzed_category" enum:"compost,recyclage,poubelle,autre,erreur"`
	BinCategory      BinCategory      `json:"bin_category" enum:"compost,recyclage,poubelle,autre"`
	DisposedAt       string           `json:"disposed_at"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

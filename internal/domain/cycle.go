package domain

import "time"

// Stage 表示一轮 poll 停在了哪一步。
type Stage string

const (
	// StageSkipped：上一轮仍在进行，本次 tick 直接跳过。
	StageSkipped   Stage = "skipped"
	StageList      Stage = "list"
	StageEmpty     Stage = "empty"
	StageUnchanged Stage = "unchanged"
	StageFetch     Stage = "fetch"
	// StageRender：markdown 已拉取但换入页面失败，标记不前移。
	StageRender    Stage = "render"
	StageRendered  Stage = "rendered"
)

// CycleReport 是一轮 poll 的执行轨迹（用于日志与 Observer，不持久化）。
type CycleReport struct {
	ID string `json:"id"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Stage  Stage  `json:"stage"`
	Latest string `json:"latest,omitempty"`
	Files  int    `json:"files"`

	// Reason/Error 仅在 list/fetch 失败时填充。
	Reason Reason `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`

	// Sidecar 为空表示本轮没走到边车步骤。
	Sidecar  Reason  `json:"sidecar,omitempty"`
	Seeked   bool    `json:"seeked"`
	Position float64 `json:"position"`
}

func (r CycleReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r CycleReport) Rendered() bool { return r.Stage == StageRendered }

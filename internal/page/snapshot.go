package page

import "slices"

// Snapshot 是 Memory 在某一时刻的只读视图（/state 与页面模板使用）。
type Snapshot struct {
	BodyClasses []string `json:"body_classes"`

	HasContent     bool     `json:"has_content"`
	ContentHTML    string   `json:"content_html"`
	ContentClasses []string `json:"content_classes"`

	HasOverlay    bool `json:"has_overlay"`
	OverlayHidden bool `json:"overlay_hidden"`
	HasButton     bool `json:"has_button"`

	HasVideo    bool    `json:"has_video"`
	VideoSrc    string  `json:"video_src,omitempty"`
	CurrentTime float64 `json:"current_time"`
	Muted       bool    `json:"muted"`
	Paused      bool    `json:"paused"`
	Tracks      []Track `json:"tracks"`

	PendingFrames int `json:"pending_frames"`
}

func (s Snapshot) Visible() bool { return slices.Contains(s.ContentClasses, ClassVisible) }

func (m *Memory) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		BodyClasses:   slices.Clone(m.body.classes),
		PendingFrames: len(m.frames),
		Tracks:        []Track{},
	}
	if m.content != nil {
		s.HasContent = true
		s.ContentHTML = m.content.html
		s.ContentClasses = slices.Clone(m.content.classes)
	}
	if m.overlay != nil {
		s.HasOverlay = true
		s.OverlayHidden = m.overlay.hidden
	}
	s.HasButton = m.button != nil
	if v := m.video; v != nil {
		s.HasVideo = true
		s.VideoSrc = v.src
		s.CurrentTime = v.currentTime
		s.Muted = v.muted
		s.Paused = v.paused
		s.Tracks = slices.Clone(v.tracks)
	}
	return s
}

package page

import (
	"math"
	"slices"
	"sync"
	"time"
)

// Track 描述 <video> 下的一条 <track>。
type Track struct {
	Label   string `json:"label"`
	SrcLang string `json:"srclang,omitempty"`
	Src     string `json:"src"`
	Mode    string `json:"mode"`
}

// MemoryOptions 控制内存页面的初始形态。
type MemoryOptions struct {
	// Omit 中列出的元素 ID 不存在于页面上（用于降级场景）。
	Omit []string

	VideoSrc string
	Tracks   []Track

	// FrameDelay>0：NextFrame 通过定时器异步执行；=0：排队直到 Flush。
	FrameDelay time.Duration

	// PlayErr 非空时 Play 总是失败（模拟自动播放策略拒绝）。
	PlayErr error
}

// Memory 是并发安全的内存 Document，供 CLI 与页面宿主使用。
type Memory struct {
	mu sync.Mutex

	body    *element
	content *container
	overlay *element
	button  *element
	video   *video

	frameDelay time.Duration
	frames     []func()
}

func NewMemory(opts MemoryOptions) *Memory {
	m := &Memory{frameDelay: opts.FrameDelay}
	omit := func(id string) bool { return slices.Contains(opts.Omit, id) }

	m.body = newElement(m, "body")
	// 初始状态：需要用户交互后才能带声播放。
	m.body.classes = []string{ClassNeedsInteraction}

	if !omit(IDContent) {
		m.content = &container{element: newElement(m, IDContent)}
	}
	if !omit(IDOverlay) {
		m.overlay = newElement(m, IDOverlay)
	}
	if !omit(IDStartButton) {
		m.button = newElement(m, IDStartButton)
	}
	if !omit(IDVideo) {
		v := &video{doc: m, src: opts.VideoSrc, muted: true, paused: true, playErr: opts.PlayErr}
		for _, t := range opts.Tracks {
			if t.Mode == "" {
				t.Mode = TrackDisabled
			}
			v.tracks = append(v.tracks, t)
		}
		m.video = v
	}
	return m
}

// 显式返回无类型 nil，避免“interface 里装着 nil 指针”。

func (m *Memory) Body() Element { return m.body }

func (m *Memory) Content() Container {
	if m.content == nil {
		return nil
	}
	return m.content
}

func (m *Memory) Overlay() Element {
	if m.overlay == nil {
		return nil
	}
	return m.overlay
}

func (m *Memory) StartButton() Element {
	if m.button == nil {
		return nil
	}
	return m.button
}

func (m *Memory) Video() Video {
	if m.video == nil {
		return nil
	}
	return m.video
}

// Flush 执行所有排队中的帧回调，返回执行数量。
func (m *Memory) Flush() int {
	m.mu.Lock()
	fns := m.frames
	m.frames = nil
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

func (m *Memory) nextFrame(fn func()) {
	if fn == nil {
		return
	}
	if m.frameDelay > 0 {
		time.AfterFunc(m.frameDelay, fn)
		return
	}
	m.mu.Lock()
	m.frames = append(m.frames, fn)
	m.mu.Unlock()
}

type element struct {
	doc *Memory
	id  string

	classes  []string
	hidden   bool
	handlers []func()
}

func newElement(doc *Memory, id string) *element {
	return &element{doc: doc, id: id}
}

func (e *element) ID() string { return e.id }

func (e *element) AddClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if !slices.Contains(e.classes, name) {
		e.classes = append(e.classes, name)
	}
}

func (e *element) RemoveClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.classes = slices.DeleteFunc(e.classes, func(c string) bool { return c == name })
}

func (e *element) HasClass(name string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return slices.Contains(e.classes, name)
}

func (e *element) SetHidden(hidden bool) {
	e.doc.mu.Lock()
	e.hidden = hidden
	e.doc.mu.Unlock()
}

func (e *element) Hidden() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.hidden
}

func (e *element) OnClick(fn func()) {
	if fn == nil {
		return
	}
	e.doc.mu.Lock()
	e.handlers = append(e.handlers, fn)
	e.doc.mu.Unlock()
}

func (e *element) Click() {
	e.doc.mu.Lock()
	hs := slices.Clone(e.handlers)
	e.doc.mu.Unlock()
	// 监听可能回调其它元素，不能持锁调用。
	for _, h := range hs {
		h()
	}
}

type container struct {
	*element
	html string
}

func (c *container) SetInnerHTML(html string) {
	c.doc.mu.Lock()
	c.html = html
	c.doc.mu.Unlock()
}

func (c *container) InnerHTML() string {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	return c.html
}

func (c *container) NextFrame(fn func()) { c.doc.nextFrame(fn) }

type video struct {
	doc *Memory

	src         string
	currentTime float64
	muted       bool
	paused      bool
	tracks      []Track
	playErr     error
}

func (v *video) SetCurrentTime(seconds float64) error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	if v.src == "" {
		return ErrNoMedia
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return ErrInvalidTime
	}
	v.currentTime = max(seconds, 0)
	return nil
}

func (v *video) CurrentTime() float64 {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	return v.currentTime
}

func (v *video) SetMuted(muted bool) {
	v.doc.mu.Lock()
	v.muted = muted
	v.doc.mu.Unlock()
}

func (v *video) Muted() bool {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	return v.muted
}

func (v *video) Play() error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	if v.playErr != nil {
		return v.playErr
	}
	if v.src == "" {
		return ErrNoMedia
	}
	v.paused = false
	return nil
}

func (v *video) TextTracks() int {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	return len(v.tracks)
}

func (v *video) SetTrackMode(i int, mode string) error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	if i < 0 || i >= len(v.tracks) {
		return ErrNoTrack
	}
	v.tracks[i].Mode = mode
	return nil
}

func (v *video) TrackMode(i int) string {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	if i < 0 || i >= len(v.tracks) {
		return ""
	}
	return v.tracks[i].Mode
}

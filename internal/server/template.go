package server

import "html/template"

type indexView struct {
	State   State
	Content template.HTML
	Body    string
	Classes string

	// VideoURL 带 #t= 媒体片段，使浏览器从已同步的位置开始。
	VideoURL    string
	CurrentTime string
	RefreshMS   int64
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>llmview</title>
<style>
#content { opacity: 0; transition: opacity .4s ease-in; }
#content.visible { opacity: 1; }
#start-overlay { position: fixed; inset: 0; display: flex; align-items: center; justify-content: center; background: rgba(0,0,0,.7); }
#start-overlay[hidden] { display: none; }
</style>
</head>
<body class="{{.Body}}" data-renders="{{.State.Renders}}">
{{- if .State.Page.HasVideo}}
<video id="video" src="{{.VideoURL}}"{{if .State.Page.Muted}} muted{{end}}{{if not .State.Page.Paused}} autoplay{{end}} playsinline controls data-current-time="{{.CurrentTime}}">
{{- range .State.Page.Tracks}}
<track kind="captions" label="{{.Label}}"{{if .SrcLang}} srclang="{{.SrcLang}}"{{end}} src="{{.Src}}"{{if eq .Mode "showing"}} default{{end}}>
{{- end}}
</video>
{{- end}}
{{- if .State.Page.HasContent}}
<div id="content" class="{{.Classes}}">{{.Content}}</div>
{{- end}}
{{- if .State.Page.HasOverlay}}
<div id="start-overlay"{{if .State.Page.OverlayHidden}} hidden{{end}}>
{{- if .State.Page.HasButton}}
<form method="post" action="/start"><button id="start-button" type="submit">Start</button></form>
{{- end}}
</div>
{{- end}}
<script>
(function () {
  var body = document.body, video = document.getElementById("video");
  var renders = body.dataset.renders, pos = video ? video.dataset.currentTime : "";
  setInterval(function () {
    fetch("/state", {cache: "no-store"}).then(function (r) { return r.json(); }).then(function (st) {
      if (String(st.renders) !== renders) { location.reload(); return; }
      var c = document.getElementById("content");
      if (c && (st.page.content_classes || []).indexOf("visible") >= 0) { c.classList.add("visible"); }
      if (video && st.page.has_video) {
        var t = st.page.current_time.toFixed(3);
        if (t !== pos) { pos = t; video.currentTime = st.page.current_time; }
      }
    }).catch(function () {});
  }, {{.RefreshMS}});
})();
</script>
</body>
</html>
`))

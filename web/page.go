package web

import (
	"html/template"
)

type pageControl struct {
	Name     string
	Min, Max int
	Value    int
}

type pageData struct {
	Controls      []pageControl
	FollowPointer bool
}

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>KinectViewer</title>
<style>
body { background: #202020; color: #ccc; font-family: monospace; }
label { display: inline-block; margin-right: 2em; }
#canvas { cursor: crosshair; }
</style>
</head>
<body>
<div id="controls">
{{range .Controls}}<label>{{.Name}} <input type="range" name="{{.Name}}" min="{{.Min}}" max="{{.Max}}" value="{{.Value}}"> <span id="{{.Name}}-value">{{.Value}}</span></label>
{{end}}</div>
<img id="canvas" src="/canvas.png" alt="canvas">
<script>
const img = document.getElementById("canvas");
function post(path, body) {
  return fetch(path, {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify(body)});
}
function refresh() {
  const next = new Image();
  next.onload = () => { img.src = next.src; setTimeout(refresh, 30); };
  next.onerror = () => setTimeout(refresh, 500);
  next.src = "/canvas.png?t=" + Date.now();
}
function pointer(ev, press) {
  const r = img.getBoundingClientRect();
  post("/click", {x: Math.round(ev.clientX - r.left), y: Math.round(ev.clientY - r.top), press: press});
}
function syncControls() {
  fetch("/controls").then(r => r.json()).then(values => {
    for (const [name, v] of Object.entries(values)) {
      const input = document.querySelector("input[name=" + name + "]");
      if (input && document.activeElement !== input) { input.value = v; }
      const label = document.getElementById(name + "-value");
      if (label) { label.textContent = v; }
    }
  }).finally(() => setTimeout(syncControls, 250));
}
img.addEventListener("mousedown", ev => pointer(ev, true));
{{if .FollowPointer}}img.addEventListener("mousemove", ev => pointer(ev, false));
{{end}}document.addEventListener("keydown", ev => post("/key", {key: ev.key}));
for (const input of document.querySelectorAll("#controls input")) {
  input.addEventListener("input", () => post("/controls", {[input.name]: parseInt(input.value, 10)}));
}
refresh();
syncControls();
</script>
</body>
</html>
`))

package web

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/kinectviewer/calibration"
	"go.viam.com/kinectviewer/logging"
	"go.viam.com/kinectviewer/viewer"
)

func newTestServer(t *testing.T) (*Server, *viewer.EventQueue, *httptest.Server) {
	t.Helper()
	return newTestServerFollowing(t, true)
}

func newTestServerFollowing(t *testing.T, followPointer bool) (*Server, *viewer.EventQueue, *httptest.Server) {
	t.Helper()
	queue := viewer.NewEventQueue(4)
	s := NewServer(queue, calibration.TrackbarMax, followPointer, logging.NewTestLogger(t))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, queue, ts
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 50, 255})
		}
	}
	return img
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestControls(t *testing.T) {
	s, _, ts := newTestServer(t)
	s.SetAdjustableValue(calibration.ControlMin, 250)
	s.SetAdjustableValue(calibration.ControlBlend, 400)
	s.SetAdjustableValue(calibration.ControlRange, -5)
	s.SetAdjustableValue("gamma", 3)

	test.That(t, s.AdjustableValue(calibration.ControlMin), test.ShouldEqual, 250)
	test.That(t, s.AdjustableValue(calibration.ControlBlend), test.ShouldEqual, 100)
	test.That(t, s.AdjustableValue(calibration.ControlRange), test.ShouldEqual, 0)
	test.That(t, s.AdjustableValue("gamma"), test.ShouldEqual, 0)

	resp := get(t, ts.URL+"/controls")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	body, err := io.ReadAll(resp.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(body), test.ShouldContainSubstring, `"min":250`)

	resp = post(t, ts.URL+"/controls", `{"range": 1200, "min": 20000}`)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	test.That(t, s.AdjustableValue(calibration.ControlRange), test.ShouldEqual, 1200)
	test.That(t, s.AdjustableValue(calibration.ControlMin), test.ShouldEqual, calibration.TrackbarMax)

	resp = post(t, ts.URL+"/controls", `{"range": 1, "gamma": 2}`)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusBadRequest)
	test.That(t, s.AdjustableValue(calibration.ControlRange), test.ShouldEqual, 1200)

	resp = post(t, ts.URL+"/controls", `not json`)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusBadRequest)
}

func TestClickAndKey(t *testing.T) {
	_, queue, ts := newTestServer(t)

	resp := post(t, ts.URL+"/click", `{"x": 12, "y": 34, "press": true}`)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusAccepted)
	resp = post(t, ts.URL+"/key", `{"key": "Escape"}`)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusAccepted)
	resp = post(t, ts.URL+"/key", `{"key": "a"}`)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusAccepted)
	resp = post(t, ts.URL+"/key", `{"key": "Shift"}`)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusBadRequest)

	ev, ok := queue.Poll()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ev, test.ShouldResemble, viewer.ClickEvent{X: 12, Y: 34, Press: true})
	ev, _ = queue.Poll()
	test.That(t, ev, test.ShouldResemble, viewer.KeyEvent{Code: viewer.KeyEscape})
	ev, _ = queue.Poll()
	test.That(t, ev, test.ShouldResemble, viewer.KeyEvent{Code: 'a'})
	_, ok = queue.Poll()
	test.That(t, ok, test.ShouldBeFalse)
}

func TestQueueFull(t *testing.T) {
	_, _, ts := newTestServer(t)
	for i := 0; i < 4; i++ {
		resp := post(t, ts.URL+"/key", `{"key": "d"}`)
		test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusAccepted)
	}
	resp := post(t, ts.URL+"/key", `{"key": "d"}`)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusTooManyRequests)
}

func TestPointerMovesDoNotCrowdOutKeys(t *testing.T) {
	for _, follow := range []bool{true, false} {
		_, queue, ts := newTestServerFollowing(t, follow)
		for i := 0; i < viewer.DefaultQueueSize; i++ {
			resp := post(t, ts.URL+"/click", fmt.Sprintf(`{"x": %d, "y": 7}`, i))
			test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusAccepted)
		}
		resp := post(t, ts.URL+"/key", `{"key": "Escape"}`)
		test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusAccepted)
		test.That(t, queue.Dropped(), test.ShouldEqual, int64(0))

		ev, ok := queue.Poll()
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, ev, test.ShouldResemble, viewer.KeyEvent{Code: viewer.KeyEscape})
		ev, ok = queue.Poll()
		test.That(t, ok, test.ShouldEqual, follow)
		if follow {
			test.That(t, ev, test.ShouldResemble, viewer.ClickEvent{X: viewer.DefaultQueueSize - 1, Y: 7})
		}
	}
}

func TestCanvasAndPreview(t *testing.T) {
	s, _, ts := newTestServer(t)
	resp := get(t, ts.URL+"/canvas.png")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusServiceUnavailable)

	src := testImage(200, 100)
	test.That(t, s.Present(context.Background(), src), test.ShouldBeNil)
	test.That(t, s.Frames(), test.ShouldEqual, int64(1))
	// the server keeps its own copy
	src.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})

	resp = get(t, ts.URL+"/canvas.png")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	test.That(t, resp.Header.Get("Content-Type"), test.ShouldEqual, "image/png")
	decoded, err := png.Decode(resp.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded.Bounds().Size(), test.ShouldResemble, image.Pt(200, 100))
	r, g, b, _ := decoded.At(0, 0).RGBA()
	test.That(t, []uint32{r >> 8, g >> 8, b >> 8}, test.ShouldResemble, []uint32{0, 0, 50})

	resp = get(t, ts.URL+"/preview.jpg?width=50")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	preview, err := jpeg.Decode(resp.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, preview.Bounds().Size(), test.ShouldResemble, image.Pt(50, 25))

	resp = get(t, ts.URL+"/preview.jpg")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	full, err := jpeg.Decode(resp.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, full.Bounds().Size(), test.ShouldResemble, image.Pt(200, 100))

	resp = get(t, ts.URL+"/preview.jpg?width=-3")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusBadRequest)
}

func TestIndexPage(t *testing.T) {
	s, _, ts := newTestServer(t)
	s.SetAdjustableValue(calibration.ControlRange, 4321)
	resp := get(t, ts.URL+"/")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	var buf bytes.Buffer
	_, err := io.Copy(&buf, resp.Body)
	test.That(t, err, test.ShouldBeNil)
	page := buf.String()
	test.That(t, page, test.ShouldContainSubstring, `name="range"`)
	test.That(t, page, test.ShouldContainSubstring, `value="4321"`)
	test.That(t, page, test.ShouldContainSubstring, `max="10000"`)
	test.That(t, page, test.ShouldContainSubstring, `"mousemove"`)

	_, _, clickOnly := newTestServerFollowing(t, false)
	resp = get(t, clickOnly.URL+"/")
	buf.Reset()
	_, err = io.Copy(&buf, resp.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldNotContainSubstring, `"mousemove"`)
	test.That(t, buf.String(), test.ShouldContainSubstring, `"mousedown"`)

	resp = get(t, ts.URL+"/nope")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusNotFound)
}

func TestCORS(t *testing.T) {
	_, _, ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/controls", nil)
	test.That(t, err, test.ShouldBeNil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	test.That(t, err, test.ShouldBeNil)
	defer resp.Body.Close()
	test.That(t, resp.Header.Get("Access-Control-Allow-Origin"), test.ShouldEqual, "*")
}

func TestServeListenerStops(t *testing.T) {
	s := NewServer(viewer.NewEventQueue(1), 100, false, logging.NewTestLogger(t))
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	test.That(t, err, test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.ServeListener(ctx, listener)
	}()

	resp := get(t, "http://"+listener.Addr().String()+"/controls")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	cancel()
	test.That(t, <-done, test.ShouldBeNil)

	err = s.Serve(context.Background(), "not an address")
	test.That(t, err, test.ShouldNotBeNil)
}

package sim

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"picoclock/display"
	"picoclock/input"
)

// Display image geometry
const (
	PixelScale = 12
	pixelGap   = 2
	captionH   = 18
)

var (
	ledOn  = color.RGBA{R: 0xFF, G: 0x30, B: 0x10, A: 0xFF}
	ledOff = color.RGBA{R: 0x28, G: 0x08, B: 0x04, A: 0xFF}
	panel  = color.RGBA{A: 0xFF}
	label  = color.RGBA{R: 0xC0, G: 0xC0, B: 0xC0, A: 0xFF}
)

// DefaultPressTime is used when a button request gives no duration
const DefaultPressTime = 100 * time.Millisecond

// RenderDisplay draws the LED matrix with a caption line below it
func RenderDisplay(rows [display.Height]uint32, caption string) *image.RGBA {
	w := display.Width * PixelScale
	h := display.Height*PixelScale + captionH
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(panel), image.Point{}, draw.Src)

	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			c := ledOff
			if rows[y]&(1<<uint(display.Width-1-x)) != 0 {
				c = ledOn
			}
			r := image.Rect(x*PixelScale+pixelGap/2, y*PixelScale+pixelGap/2,
				(x+1)*PixelScale-pixelGap/2, (y+1)*PixelScale-pixelGap/2)
			draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(label),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, display.Height*PixelScale+captionH-5),
	}
	drawer.DrawString(caption)
	return img
}

// Caption summarises a snapshot in one line
func Caption(snap Snapshot) string {
	st := snap.Status
	w := st.Now
	text := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second)
	switch {
	case st.Ringing != 0:
		text += " RING"
	case st.Paused:
		text += fmt.Sprintf(" paused %dh", st.PauseHours)
	}
	if st.Countdown.Running {
		text += fmt.Sprintf(" T-%d", st.Countdown.Remaining)
	}
	if st.Setup.Active() {
		text += fmt.Sprintf(" %s/%d", st.Setup.Domain, st.Setup.Step)
	}
	return text
}

// StatusJSON is the /status body
type StatusJSON struct {
	Time        string   `json:"time"`
	Weekday     uint8    `json:"weekday"`
	Ringing     uint16   `json:"ringing"`
	Paused      bool     `json:"paused"`
	PauseHours  uint8    `json:"pause_hours"`
	Countdown   uint16   `json:"countdown"`
	Night       bool     `json:"night"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Setup       string   `json:"setup"`
	SetupStep   uint8    `json:"setup_step"`
	Brightness  uint8    `json:"brightness"`
	Tone        uint32   `json:"tone_hz"`
	Beeper      bool     `json:"beeper"`
	Drops       uint32   `json:"drops"`
	Overruns    uint32   `json:"overruns"`
}

func statusJSON(snap Snapshot) StatusJSON {
	st := snap.Status
	w := st.Now
	out := StatusJSON{
		Time:       fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second),
		Weekday:    w.Weekday,
		Ringing:    st.Ringing,
		Paused:     st.Paused,
		PauseHours: st.PauseHours,
		Night:      st.Night,
		Setup:      st.Setup.Domain.String(),
		SetupStep:  st.Setup.Step,
		Brightness: st.Brightness,
		Tone:       snap.Tone,
		Beeper:     snap.Beeper,
		Drops:      st.Drops,
		Overruns:   st.Overruns,
	}
	if st.Countdown.Running {
		out.Countdown = st.Countdown.Remaining
	}
	if st.ReadingOK {
		t := float64(st.Reading.TempC10) / 10
		h := float64(st.Reading.Humidity10) / 10
		out.Temperature, out.Humidity = &t, &h
	}
	return out
}

var buttonNames = map[string]input.Button{
	"mode": input.Mode,
	"up":   input.Up,
	"down": input.Down,
}

// Router serves the simulator's HTTP interface
func (s *Sim) Router(gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/display.png", http.StatusFound)
	}).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/display.png", s.serveDisplay).Methods("GET")
	r.HandleFunc("/status", s.serveStatus).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/button/{name}", s.serveButton).Methods("POST")
	api.HandleFunc("/light/{level:[0-9]+}", s.serveLight).Methods("POST")
	api.HandleFunc("/sync", s.serveSync).Methods("POST")
	return r
}

func (s *Sim) serveDisplay(w http.ResponseWriter, req *http.Request) {
	snap := s.Snapshot()
	w.Header().Add("content-type", "image/png")
	w.Header().Add("refresh", "1")
	if err := png.Encode(w, RenderDisplay(snap.Rows, Caption(snap))); err != nil {
		s.log.Errorf("encode display: %v", err)
	}
}

func (s *Sim) serveStatus(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(w).Encode(statusJSON(s.Snapshot())); err != nil {
		s.log.Errorf("encode status: %v", err)
	}
}

func (s *Sim) serveButton(w http.ResponseWriter, req *http.Request) {
	b, ok := buttonNames[mux.Vars(req)["name"]]
	if !ok {
		http.Error(w, "unknown button", http.StatusNotFound)
		return
	}
	d := DefaultPressTime
	if v := req.URL.Query().Get("ms"); v != "" {
		ms, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			http.Error(w, "bad ms: "+err.Error(), http.StatusBadRequest)
			return
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if err := s.Press(b, d); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Sim) serveLight(w http.ResponseWriter, req *http.Request) {
	level, err := strconv.ParseUint(mux.Vars(req)["level"], 10, 16)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.SetLight(uint16(level))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Sim) serveSync(w http.ResponseWriter, req *http.Request) {
	if err := s.Sync(req.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.serveStatus(w, req)
}

package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/njchilds90/scicalc"
)

type pageData struct {
	Page        scicalc.Page
	MatrixOps   []string
	CalculusOps []string
}

// handlePage re-runs the whole render pass on every request.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	calc, defaults := s.state()
	form := formFrom(r.Form, defaults, r.Method == http.MethodPost)
	page := calc.Render(form)

	for _, sec := range page.Sections() {
		if !sec.OK() {
			logger(r).Debug("section error", zap.String("section", sec.Title), zap.Error(sec.Err))
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{Page: page, MatrixOps: scicalc.MatrixOps, CalculusOps: scicalc.CalculusOps}); err != nil {
		logger(r).Error("render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// formFrom overlays submitted values on defaults. A posted form always
// carries the shift checkbox state: absent means off.
func formFrom(v url.Values, defaults scicalc.Form, posted bool) scicalc.Form {
	f := defaults
	for key, dst := range map[string]*string{
		"angle":     &f.Angle,
		"matrix_op": &f.MatrixOp,
		"matrix_a":  &f.MatrixA,
		"matrix_b":  &f.MatrixB,
		"expr":      &f.Expr,
		"vars":      &f.Vars,
		"calc_op":   &f.CalcOp,
		"var":       &f.Var,
		"lower":     &f.Lower,
		"upper":     &f.Upper,
	} {
		if v.Has(key) {
			*dst = v.Get(key)
		}
	}
	if posted || v.Has("shift") {
		switch v.Get("shift") {
		case "on", "true", "1":
			f.Shift = true
		default:
			f.Shift = false
		}
	}
	return f
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req scicalc.ToolRequest
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	calc, _ := s.state()
	resp := calc.HandleToolCall(req)
	if resp.Error != "" {
		logger(r).Debug("tool error", zap.String("tool", req.Tool), zap.String("error", resp.Error))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, scicalc.ToolSpec())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

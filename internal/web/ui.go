package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ppiankov/clarifai/internal/layout"
	"github.com/ppiankov/clarifai/internal/model"
)

// uiInput reads a view-state request from a JSON body or form values
type uiInput struct {
	Collapsed *bool  `json:"collapsed"`
	Enabled   *bool  `json:"enabled"`
	Theme     string `json:"theme"`
}

func readUIInput(r *http.Request) (uiInput, error) {
	var in uiInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
			return in, err
		}
		return in, nil
	}

	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Theme = r.PostFormValue("theme")
	var err error
	if in.Collapsed, err = formBool(r, "collapsed"); err != nil {
		return in, err
	}
	if in.Enabled, err = formBool(r, "enabled"); err != nil {
		return in, err
	}
	return in, nil
}

func formBool(r *http.Request, key string) (*bool, error) {
	raw := r.PostFormValue(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// updateView applies fn to the visitor's state and answers with the new state,
// or redirects a browser form back to its page
func (s *Server) updateView(w http.ResponseWriter, r *http.Request, fn func(*layout.ViewState) error) {
	state, err := s.sessions.Update(sessionID(r), fn)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errUnknownKey) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	if wantsHTML(r) {
		redirectBack(w, r, "/dashboard")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

var errUnknownKey = errors.New("unknown notification")

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	in, err := readUIInput(r)
	if err != nil {
		badRequest(w, "invalid sidebar request: "+err.Error())
		return
	}
	s.updateView(w, r, func(v *layout.ViewState) error {
		if in.Collapsed != nil {
			v.SetSidebar(*in.Collapsed)
			return nil
		}
		v.ToggleSidebar()
		return nil
	})
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	in, err := readUIInput(r)
	if err != nil {
		badRequest(w, "invalid theme request: "+err.Error())
		return
	}
	theme, err := layout.ParseTheme(in.Theme)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	s.updateView(w, r, func(v *layout.ViewState) error {
		v.SetTheme(theme)
		return nil
	})
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	s.updateView(w, r, func(v *layout.ViewState) error {
		v.ToggleTheme()
		return nil
	})
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	in, err := readUIInput(r)
	if err != nil {
		badRequest(w, "invalid notification request: "+err.Error())
		return
	}
	s.updateView(w, r, func(v *layout.ViewState) error {
		var err error
		if in.Enabled != nil {
			err = v.SetNotification(key, *in.Enabled)
		} else {
			err = v.ToggleNotification(key)
		}
		if errors.Is(err, model.ErrUnknownEnumValue) {
			return errors.Join(errUnknownKey, err)
		}
		return err
	})
}

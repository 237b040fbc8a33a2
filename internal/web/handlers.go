package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/pgEdge/pgedge-orderbi/internal/assistant"
	"github.com/pgEdge/pgedge-orderbi/internal/config"
)

type loginPage struct {
	Error   string
	Info    string
	Warning string
}

type historyView struct {
	Number int
	HistoryEntry
}

type indexPage struct {
	Flashes      []flash
	Question     string
	GeneratedSQL string
	Result       *assistant.Result
	ResultNote   string
	History      []historyView
	Examples     map[string][]string
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.FromRequest(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "login.html", loginPage{})
}

// checkPassword compares password with the configured hash and returns the
// message to show when login fails.
func (s *Server) checkPassword(password string) (loginPage, bool) {
	if password == "" {
		return loginPage{Warning: "Please enter a password"}, false
	}

	hash := []byte(s.cfg.HashedPassword)
	if len(hash) < 10 {
		return loginPage{
			Error: "Configuration Error: " + config.EnvHashedPassword + " not set!",
			Info:  "Add " + config.EnvHashedPassword + " to your .env file or environment.",
		}, false
	}

	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	switch {
	case err == nil:
		return loginPage{}, true
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return loginPage{Error: "Incorrect password"}, false
	default:
		s.log.Error().Err(err).Msg("Password hash check failed")
		return loginPage{
			Error: "Configuration Error: Invalid " + config.EnvHashedPassword + " format!",
			Info:  "Run `pgedge-orderbi hash-password` to generate a valid hash.",
		}, false
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	page, ok := s.checkPassword(r.PostFormValue("password"))
	if !ok {
		if page.Error != "" {
			s.log.Warn().Str("remote", r.RemoteAddr).Msg("Login failed")
		}
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, "login.html", page)
		return
	}

	sess := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Info().Str("remote", r.RemoteAddr).Msg("Login succeeded")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, err := s.sessions.FromRequest(r); err == nil {
		s.sessions.Delete(sess.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.mu.Lock()
	page := indexPage{
		Flashes:      sess.takeFlashes(),
		Question:     sess.question,
		GeneratedSQL: sess.generatedSQL,
		Result:       sess.result,
		ResultNote:   sess.resultNote,
		History:      s.recentHistory(sess.history),
		Examples:     assistant.ExampleQuestions,
	}
	sess.mu.Unlock()

	s.render(w, "index.html", page)
}

// recentHistory returns the newest entries first, numbered from the
// oldest.
func (s *Server) recentHistory(history []HistoryEntry) []historyView {
	var views []historyView
	for i := len(history) - 1; i >= 0 && len(views) < s.cfg.HistorySize; i-- {
		views = append(views, historyView{Number: i + 1, HistoryEntry: history[i]})
	}
	return views
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	question := strings.TrimSpace(r.PostFormValue("question"))

	if question == "" {
		sess.mu.Lock()
		sess.addFlash("warning", "Please enter a question")
		sess.mu.Unlock()
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sess.mu.Lock()
	if sess.question != question {
		sess.generatedSQL = ""
		sess.question = ""
	}
	sess.mu.Unlock()

	sql, err := s.gen.GenerateSQL(r.Context(), question)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		s.log.Error().Err(err).Msg("SQL generation failed")
		sess.addFlash("error", "Error calling OpenAI API: "+err.Error())
	} else {
		sess.generatedSQL = sql
		sess.question = question
		sess.result = nil
		sess.resultNote = ""
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sql := r.PostFormValue("sql")

	result, err := s.runner.Run(r.Context(), sql)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		sess.addFlash("error", err.Error())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sess.generatedSQL = strings.TrimSpace(sql)
	sess.result = result
	sess.resultNote = ""
	sess.history = append(sess.history, HistoryEntry{
		Question: sess.question,
		SQL:      sess.generatedSQL,
		Rows:     len(result.Rows),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.mu.Lock()
	sess.history = nil
	sess.generatedSQL = ""
	sess.question = ""
	sess.result = nil
	sess.resultNote = ""
	sess.mu.Unlock()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRerun(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	n, _ := strconv.Atoi(mux.Vars(r)["index"])

	sess.mu.Lock()
	if n < 1 || n > len(sess.history) {
		sess.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	entry := sess.history[n-1]
	sess.mu.Unlock()

	result, err := s.runner.Run(r.Context(), entry.SQL)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		sess.addFlash("error", err.Error())
	} else {
		sess.result = result
		sess.resultNote = "Re-run of query " + strconv.Itoa(n)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Package selection remembers the dashboard's last survey and question
// choice in a signed cookie, so a full page reload re-selects them.
package selection

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/surveydash/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	keySurvey   = "survey_id"
	keyQuestion = "question_id"
)

// Selection is the remembered dropdown state. Zero IDs mean nothing chosen.
type Selection struct {
	SurveyID   models.ID
	QuestionID models.ID
}

// HasSurvey reports whether a survey was remembered.
func (s Selection) HasSurvey() bool { return s.SurveyID != 0 }

// HasQuestion reports whether a question was remembered.
func (s Selection) HasQuestion() bool { return s.QuestionID != 0 }

// Manager reads and writes the selection cookie.
type Manager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewManager creates a Manager signing cookies with key. In production
// (secure=true) the cookie is marked Secure.
func NewManager(key, name string, secure bool, logger *zap.Logger) (*Manager, error) {
	if key == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(key)))
	}
	if name == "" {
		name = "surveydash-session"
	}

	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, name: name, log: logger}, nil
}

// session returns the request's session. An undecodable cookie (rotated
// key, tampering) yields a fresh session.
func (m *Manager) session(r *http.Request) *sessions.Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.log.Debug("selection cookie invalid, using fresh session", zap.Error(err))
		} else {
			m.log.Warn("selection session error, using fresh session", zap.Error(err))
		}
	}
	return sess
}

// Load returns the remembered selection.
func (m *Manager) Load(r *http.Request) Selection {
	sess := m.session(r)
	return Selection{
		SurveyID:   getID(sess, keySurvey),
		QuestionID: getID(sess, keyQuestion),
	}
}

// RememberSurvey stores the chosen survey and forgets the question, since the
// question list is rebuilt for every survey choice.
func (m *Manager) RememberSurvey(w http.ResponseWriter, r *http.Request, id models.ID) {
	sess := m.session(r)
	sess.Values[keySurvey] = int64(id)
	delete(sess.Values, keyQuestion)
	m.save(w, r, sess)
}

// RememberQuestion stores the chosen question.
func (m *Manager) RememberQuestion(w http.ResponseWriter, r *http.Request, id models.ID) {
	sess := m.session(r)
	sess.Values[keyQuestion] = int64(id)
	m.save(w, r, sess)
}

// Clear forgets both choices.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	sess := m.session(r)
	delete(sess.Values, keySurvey)
	delete(sess.Values, keyQuestion)
	m.save(w, r, sess)
}

func (m *Manager) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		m.log.Warn("selection save failed", zap.Error(err))
	}
}

func getID(s *sessions.Session, key string) models.ID {
	if v, ok := s.Values[key].(int64); ok {
		return models.ID(v)
	}
	return 0
}

package compose

import (
	"github.com/xonecas/composer/internal/mention"
	"github.com/xonecas/composer/internal/projection"
)

// Session owns the state that lives as long as one open document: the
// persisted action-state map, the mention display cache, and the latest
// suggestion pattern. It is built when a document is opened and torn down
// when the document is closed; nothing here is global.
type Session struct {
	actions    map[projection.ActionID]projection.ActionState
	Mentions   *mention.DisplayCache
	Suggestion *projection.SuggestionPattern
}

// NewSession starts a fresh editing session. resolver may be nil when the
// host supplies no mention capability.
func NewSession(resolver mention.Resolver) *Session {
	return &Session{
		actions:  make(map[projection.ActionID]projection.ActionState),
		Mentions: mention.NewDisplayCache(resolver),
	}
}

// ActionStates exposes the persisted action-state map. Single-threaded by
// contract; callers must not hold the map across dispatches.
func (s *Session) ActionStates() map[projection.ActionID]projection.ActionState {
	return s.actions
}

// ActionState returns the current state of one action. Unknown actions
// report Enabled, the neutral default.
func (s *Session) ActionState(id projection.ActionID) projection.ActionState {
	if st, ok := s.actions[id]; ok {
		return st
	}
	return projection.Enabled
}

// mergeMenu overwrites only the keys present in the update; untouched
// entries keep their prior state.
func (s *Session) mergeMenu(update projection.MenuStateUpdate) {
	for id, st := range update {
		s.actions[id] = st
	}
}

// Teardown clears everything session-scoped. Called when the document is
// closed or replaced from scratch.
func (s *Session) Teardown() {
	s.actions = make(map[projection.ActionID]projection.ActionState)
	if s.Mentions != nil {
		s.Mentions.Clear()
	}
	s.Suggestion = nil
}

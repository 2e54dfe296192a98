// Package favorites holds saved verses and saved Q&A conversations,
// independent of the annotation store. Each collection persists under its own
// file and deduplicates at insertion time: verses by id, conversations by
// question text.
package favorites

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/selahproject/selah/internal/api"
)

const (
	versesFileName        = "saved_verses.json"
	conversationsFileName = "saved_conversations.json"
)

// Store manages saved verses and conversations. Safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	dir           string
	verses        []api.Verse
	conversations []api.Answer
}

// Open loads both collections from dir. A missing or unparseable file resets
// that collection to empty; startup never fails on bad payloads.
func Open(dir string) *Store {
	s := &Store{dir: dir}
	if err := loadJSON(filepath.Join(dir, versesFileName), &s.verses); err != nil {
		log.Printf("favorites: reset saved verses: %v", err)
		s.verses = nil
	}
	if err := loadJSON(filepath.Join(dir, conversationsFileName), &s.conversations); err != nil {
		log.Printf("favorites: reset saved conversations: %v", err)
		s.conversations = nil
	}
	return s
}

// AddVerse saves a verse. Adding an already-saved verse id is a no-op.
func (s *Store) AddVerse(v api.Verse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, saved := range s.verses {
		if saved.ID == v.ID {
			return
		}
	}
	s.verses = append(s.verses, v)
	s.saveVersesLocked()
}

// RemoveVerse deletes a saved verse by id, if present.
func (s *Store) RemoveVerse(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.verses[:0]
	for _, v := range s.verses {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(s.verses) {
		return
	}
	s.verses = kept
	s.saveVersesLocked()
}

// IsVerseSaved reports whether a verse id has been saved.
func (s *Store) IsVerseSaved(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.verses {
		if v.ID == id {
			return true
		}
	}
	return false
}

// Verses returns the saved verses in insertion order.
func (s *Store) Verses() []api.Verse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Verse, len(s.verses))
	copy(out, s.verses)
	return out
}

// AddConversation saves a Q&A answer. Adding an answer whose question text is
// already saved is a no-op.
func (s *Store) AddConversation(a api.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, saved := range s.conversations {
		if saved.Question == a.Question {
			return
		}
	}
	s.conversations = append(s.conversations, a)
	s.saveConversationsLocked()
}

// RemoveConversation deletes a saved conversation by question text.
func (s *Store) RemoveConversation(question string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.conversations[:0]
	for _, c := range s.conversations {
		if c.Question != question {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(s.conversations) {
		return
	}
	s.conversations = kept
	s.saveConversationsLocked()
}

// IsConversationSaved reports whether a question has been saved.
func (s *Store) IsConversationSaved(question string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.conversations {
		if c.Question == question {
			return true
		}
	}
	return false
}

// Conversations returns the saved answers in insertion order.
func (s *Store) Conversations() []api.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Answer, len(s.conversations))
	copy(out, s.conversations)
	return out
}

func (s *Store) saveVersesLocked() {
	if err := saveJSON(filepath.Join(s.dir, versesFileName), s.verses); err != nil {
		log.Printf("favorites: save verses failed: %v", err)
	}
}

func (s *Store) saveConversationsLocked() {
	if err := saveJSON(filepath.Join(s.dir, conversationsFileName), s.conversations); err != nil {
		log.Printf("favorites: save conversations failed: %v", err)
	}
}

func loadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func saveJSON(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

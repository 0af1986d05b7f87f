package controllers

import "sync"

// NavigationRecorder is a Navigator that records issued redirects. The
// page handlers surface the recorded path in view-state responses.
type NavigationRecorder struct {
	mu    sync.Mutex
	paths []string
}

func NewNavigationRecorder() *NavigationRecorder {
	return &NavigationRecorder{}
}

func (n *NavigationRecorder) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

// Last returns the most recent redirect, or "" when none was issued.
func (n *NavigationRecorder) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

// Count returns how many redirects were issued.
func (n *NavigationRecorder) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.paths)
}

// AutoConfirm is a ConfirmationPrompt whose answer is fixed up front. Over
// HTTP the client's explicit confirm flag decides it; tests pick either.
type AutoConfirm bool

func (a AutoConfirm) Confirm(header, message string, onAccept func()) {
	if a {
		onAccept()
	}
}

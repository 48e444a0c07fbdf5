package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// notifyMsg shows a message in a modal the operator dismisses
type notifyMsg struct {
	text string
}

// confirmMsg asks a yes/no question; the answer goes to reply
type confirmMsg struct {
	text  string
	reply chan<- bool
}

// Notifier delivers view notifications to the running program. Confirm
// blocks the calling command goroutine until the operator answers.
type Notifier struct {
	mu   sync.RWMutex
	send func(tea.Msg)
	done chan struct{}
	once sync.Once
}

// NewNotifier creates a notifier with no program attached
func NewNotifier() *Notifier {
	return &Notifier{done: make(chan struct{})}
}

// Attach sets the function used to deliver messages, usually (*tea.Program).Send
func (n *Notifier) Attach(send func(tea.Msg)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = send
}

// Close releases any Confirm still waiting; they answer no
func (n *Notifier) Close() {
	n.once.Do(func() { close(n.done) })
}

func (n *Notifier) sender() func(tea.Msg) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.send
}

// Notify implements views.Notifier
func (n *Notifier) Notify(message string) {
	if send := n.sender(); send != nil {
		send(notifyMsg{text: message})
	}
}

// Confirm implements views.Notifier
func (n *Notifier) Confirm(message string) bool {
	send := n.sender()
	if send == nil {
		return false
	}

	reply := make(chan bool, 1)
	send(confirmMsg{text: message, reply: reply})

	select {
	case ok := <-reply:
		return ok
	case <-n.done:
		return false
	}
}

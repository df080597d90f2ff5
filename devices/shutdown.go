package devices

import (
	"errors"
	"fmt"
	"sync"

	"github.com/touchrec/touchrec/utils"
)

// ShutdownHook collects cleanup steps (capture processes, temp scripts,
// the RPC server) to run once on exit.
type ShutdownHook struct {
	mu    sync.Mutex
	hooks []namedHook
}

type namedHook struct {
	name string
	fn   func() error
}

func NewShutdownHook() *ShutdownHook {
	return &ShutdownHook{}
}

// Register adds a cleanup step. Steps run in reverse registration order, so
// resources registered later, which may depend on earlier ones, go first.
func (s *ShutdownHook) Register(name string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, namedHook{name: name, fn: fn})
	utils.Verbose("registered shutdown hook: %s", name)
}

// Shutdown runs every step even if some fail, and clears the list.
func (s *ShutdownHook) Shutdown() error {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		utils.Verbose("running shutdown hook: %s", hook.name)
		if err := hook.fn(); err != nil {
			utils.Verbose("shutdown hook %s failed: %v", hook.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
		}
	}

	return errors.Join(errs...)
}

func (s *ShutdownHook) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}

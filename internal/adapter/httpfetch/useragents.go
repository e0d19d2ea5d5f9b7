package httpfetch

import "sync"

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
}

// UserAgents hands out user agent strings in rotation.
type UserAgents struct {
	agents []string
	mu     sync.Mutex
	next   int
}

// NewUserAgents rotates over agents, or over a built-in browser list when
// agents is empty.
func NewUserAgents(agents ...string) *UserAgents {
	var list []string
	for _, a := range agents {
		if a != "" {
			list = append(list, a)
		}
	}
	if len(list) == 0 {
		list = defaultUserAgents
	}
	return &UserAgents{agents: list}
}

// Next returns the next user agent, wrapping around at the end of the list.
func (u *UserAgents) Next() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	ua := u.agents[u.next]
	u.next = (u.next + 1) % len(u.agents)
	return ua
}

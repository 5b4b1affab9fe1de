package render

import (
	"sync"

	"github.com/papercomputeco/chatgate/pkg/llm"
)

// View is the ordered list of blocks a conversation shows. A fresh view shows
// the welcome content until the user acts. It is safe for concurrent use.
type View struct {
	mu      sync.Mutex
	welcome bool
	blocks  []Block
}

// NewView creates a view showing the welcome content.
func NewView() *View {
	return &View{welcome: true}
}

// Append adds b at the bottom. A user block dismisses the welcome content.
func (v *View) Append(b Block) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if b.Role == llm.RoleUser {
		v.welcome = false
	}
	v.blocks = append(v.blocks, b)
}

// DismissWelcome hides the welcome content without adding a block.
func (v *View) DismissWelcome() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.welcome = false
}

// ShowTyping inserts the working placeholder. At most one exists at a time.
func (v *View) ShowTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.welcome = false
	if v.typingIndex() >= 0 {
		return
	}
	v.blocks = append(v.blocks, Block{Kind: KindTyping, Role: llm.RoleAssistant})
}

// HideTyping removes the working placeholder and reports whether one existed.
func (v *View) HideTyping() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.typingIndex()
	if i < 0 {
		return false
	}
	v.blocks = append(v.blocks[:i], v.blocks[i+1:]...)
	return true
}

// Typing reports whether the working placeholder is showing.
func (v *View) Typing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.typingIndex() >= 0
}

func (v *View) typingIndex() int {
	for i := range v.blocks {
		if v.blocks[i].Kind == KindTyping {
			return i
		}
	}
	return -1
}

// Welcome reports whether the welcome content is showing.
func (v *View) Welcome() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.welcome
}

// Blocks returns a copy of the blocks, oldest first.
func (v *View) Blocks() []Block {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Block, len(v.blocks))
	copy(out, v.blocks)
	return out
}

// ScrollAnchor is the index the view should be scrolled to: the newest
// block, or -1 when empty.
func (v *View) ScrollAnchor() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.blocks) - 1
}

// Reset drops every block and shows the welcome content again.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.blocks = nil
	v.welcome = true
}

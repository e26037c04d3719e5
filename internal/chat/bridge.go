package chat

import (
	"context"
	"strings"
	"sync"

	"bonsai-cli/internal/model"
)

// FallbackReply is appended in place of an assistant reply when the chat
// call fails. The user's own message stays in the history: the transcript is
// an honest log of what was sent, even when no answer came back.
const FallbackReply = "Sorry, I had trouble processing that."

// mutationKeywords are scanned (case-insensitively) in assistant replies to
// infer that the assistant changed tasks server-side. The reply surface is
// natural language, not a protocol, so this over-triggers on conversational
// use of these words; a spurious refresh is harmless, stale data is not.
var mutationKeywords = []string{"added", "deleted", "marked", "updated"}

// MentionsMutation reports whether reply looks like a mutation confirmation.
// Kept as the single seam to swap for a structured {reply, mutated} envelope
// if the server ever grows one.
func MentionsMutation(reply string) bool {
	r := strings.ToLower(reply)
	for _, kw := range mutationKeywords {
		if strings.Contains(r, kw) {
			return true
		}
	}
	return false
}

// Converser is the slice of the gateway the bridge needs.
type Converser interface {
	Chat(ctx context.Context, message string, history []model.ChatMessage, userID string) (string, error)
}

// Bridge owns one conversation: an ordered, append-only history plus the
// hook that resynchronizes the task list when a reply indicates a mutation.
// It is a second, independent path to mutation that converges on the same
// refresh used by direct UI actions.
type Bridge struct {
	gw     Converser
	userID string

	// OnMutation runs after a reply trips the keyword heuristic. Callers
	// wire it to the task-list refresh. Nil is fine.
	OnMutation func()

	// Output, when set, speaks successful replies. Failures are not spoken.
	Output SpeechOutput

	mu      sync.Mutex
	history []model.ChatMessage
}

func NewBridge(gw Converser, userID string) *Bridge {
	return &Bridge{gw: gw, userID: userID}
}

// History returns a snapshot of the conversation so far.
func (b *Bridge) History() []model.ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.ChatMessage, len(b.history))
	copy(out, b.history)
	return out
}

// Seed preloads history (e.g. the tail of a stored transcript) before the
// first Send. It must not be called mid-conversation.
func (b *Bridge) Seed(msgs []model.ChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append([]model.ChatMessage(nil), msgs...)
}

// Send appends the user's utterance to the history, calls the chat endpoint
// with the history as it stood *before* the utterance, and appends the reply
// (or FallbackReply on failure). It reports the reply, whether the mutation
// heuristic fired, and the transport error if any.
func (b *Bridge) Send(ctx context.Context, utterance string) (reply string, mutated bool, err error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return "", false, nil
	}

	b.mu.Lock()
	prior := make([]model.ChatMessage, len(b.history))
	copy(prior, b.history)
	b.history = append(b.history, model.ChatMessage{Role: model.ChatRoleUser, Content: utterance})
	b.mu.Unlock()

	reply, err = b.gw.Chat(ctx, utterance, prior, b.userID)
	if err != nil {
		b.mu.Lock()
		b.history = append(b.history, model.ChatMessage{Role: model.ChatRoleAssistant, Content: FallbackReply})
		b.mu.Unlock()
		return FallbackReply, false, err
	}

	b.mu.Lock()
	b.history = append(b.history, model.ChatMessage{Role: model.ChatRoleAssistant, Content: reply})
	b.mu.Unlock()

	if MentionsMutation(reply) {
		mutated = true
		if b.OnMutation != nil {
			b.OnMutation()
		}
	}
	if b.Output != nil {
		b.Output.Speak(reply)
	}
	return reply, mutated, nil
}

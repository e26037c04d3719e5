package chat

import (
	"os/exec"
	"strings"
)

// Voice I/O is an alternate producer/consumer of the same text channel the
// bridge already speaks: speech-to-text feeds Send's utterance, text-to-speech
// consumes a successful reply. Environments without either capability get the
// no-op implementations.

// SpeechInput captures one utterance of spoken input as text.
type SpeechInput interface {
	Listen() (string, error)
}

// SpeechOutput renders reply text audibly. Speak is best-effort; a failed
// speech call never fails the chat exchange it decorates.
type SpeechOutput interface {
	Speak(text string)
}

type NoopSpeech struct{}

func (NoopSpeech) Listen() (string, error) { return "", nil }
func (NoopSpeech) Speak(string)            {}

// CommandSpeaker pipes reply text to an external program's stdin (e.g. "say"
// on macOS, "espeak" on Linux). Command may include arguments.
type CommandSpeaker struct {
	Command string
}

func (s CommandSpeaker) Speak(text string) {
	words := strings.Fields(strings.TrimSpace(s.Command))
	if len(words) == 0 || strings.TrimSpace(text) == "" {
		return
	}
	cmd := exec.Command(words[0], words[1:]...)
	cmd.Stdin = strings.NewReader(text)
	_ = cmd.Run()
}

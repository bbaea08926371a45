package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCatalog struct {
	entries map[string]string
}

func (f *fakeCatalog) GetRawPrompt(key string, vars map[string]string) (string, bool) {
	v, ok := f.entries[key]
	if !ok {
		return "", false
	}
	for name, val := range vars {
		v = replaceAll(v, "{"+name+"}", val)
	}
	return v, true
}

func replaceAll(s, old, new string) string {
	for {
		idx := indexOf(s, old)
		if idx < 0 {
			return s
		}
		s = s[:idx] + new + s[idx+len(old):]
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestBuildTaskMessageFor_FallsBackWithoutCatalog(t *testing.T) {
	out := BuildTaskMessageFor(nil, "I draw my sword.", InputCharacter, []string{"Elena Voss"}, "Kara", RulesInfo{ResponseLength: "concise"})
	assert.Contains(t, out, "ACTIVE CHARACTERS THIS TURN: Elena Voss")
	assert.Contains(t, out, "I draw my sword.")
	assert.Contains(t, out, "Keep responses concise")
}

func TestBuildTaskMessageFor_UsesCatalogTemplateWhenPresent(t *testing.T) {
	cat := &fakeCatalog{entries: map[string]string{
		"roleplay.task_direction": "DIRECTION for {active_list}: {user_input}",
	}}
	out := BuildTaskMessageFor(cat, "make it rain", InputDirection, []string{"Elena Voss"}, "Kara", RulesInfo{})
	assert.Equal(t, "DIRECTION for Elena Voss: make it rain", out)
}

func TestBuildAutoContinueTask_FallsBackWithoutCatalog(t *testing.T) {
	out := BuildAutoContinueTask(nil, []string{"Elena Voss", "Marcus"}, "Kara", RulesInfo{ResponseLength: "detailed"})
	assert.Contains(t, out, "Continue the conversation")
	assert.Contains(t, out, "detailed")
}

func TestBuildAutoPlayerTask_MentionsOnlyThePlayer(t *testing.T) {
	out := BuildAutoPlayerTask(nil, "Kara", RulesInfo{ResponseLength: "concise"})
	assert.Contains(t, out, "Write Kara's next response")
	assert.Contains(t, out, "Write ONLY Kara")
}

func TestBuildOpeningTask_IncludesScenarioAndCharacters(t *testing.T) {
	out := BuildOpeningTask(nil, []string{"Elena Voss", "Marcus"}, "Kara", "A storm rolls in over the harbor.", RulesInfo{ResponseLength: "concise"})
	assert.Contains(t, out, "Elena Voss, Marcus")
	assert.Contains(t, out, "A storm rolls in over the harbor.")
}

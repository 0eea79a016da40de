package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads analysis prompts from user-editable files on disk,
// falling back to embedded defaults.
//
// Initialisation is lazy: the directory and default files are created on
// the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are written to disk on first use and served when a file is missing.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSystem: `You are a careful research analyst. The user gives you several sources, each introduced by a label such as [S1], a title and where it came from.

Rules:
1. Use only the information in the sources. If they do not answer something, say so.
2. Whenever a statement relies on a source, cite its label, for example [S2]. Cite several labels when sources agree.
3. Point out contradictions between sources instead of silently choosing one.
4. Do not invent URLs, authors or dates.`,

	driven.PromptSynthesis: `Integrate all of the sources below into one coherent summary.
Organise the result by theme rather than by source, merge overlapping points, and keep the most important facts, arguments and conclusions.
Finish with a short list of key takeaways.`,

	driven.PromptComparison: `Compare the sources below.
Start with what they have in common, then describe where they differ in facts, emphasis or conclusions.
Where useful, present the differences as a table with one column per source.
End with an assessment of which points remain disputed.`,

	driven.PromptSummary: `Summarise each source below on its own, in the order given, under a heading with its label and title.
Then write a combined overview that connects the individual summaries.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.sheaf/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".sheaf", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// The user's file wins; a missing or unreadable file falls back to the
// embedded default. Unknown names without a file are an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("empty prompt file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory, default files and a README.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := s.pathFor(name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) pathFor(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.pathFor(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Sheaf Prompts

These files control how sheaf asks the model to analyse your sources.

## Files

- ` + "`system.txt`" + ` - Rules shared by every analysis (citations, no invention)
- ` + "`synthesis.txt`" + ` - Instruction for the synthesis analysis type
- ` + "`comparison.txt`" + ` - Instruction for the comparison analysis type
- ` + "`summary.txt`" + ` - Instruction for the summary analysis type

The custom analysis type uses the prompt you type in the session. Left
empty, it uses ` + "`synthesis.txt`" + `.

## Customisation

Edit any file to change the instruction. Sources, the output language and
the Markdown instruction are appended automatically, so the files need no
placeholders. Delete a file to restore its default on the next run.
`
	return os.WriteFile(path, []byte(content), 0600)
}

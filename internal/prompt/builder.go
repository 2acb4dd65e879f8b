package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/akiasu-sonino/vt-present-describe-go/internal/domain"
)

//go:embed templates/*.json
var templateFS embed.FS

// Style selects which instruction template is rendered.
type Style string

const (
	StyleEditor      Style = "editor"
	StyleThirdPerson Style = "third_person"
)

var styleFiles = map[Style]string{
	StyleEditor:      "streamer_intro_editor.json",
	StyleThirdPerson: "streamer_intro_third_person.json",
}

type templateDocument struct {
	Prompt string `json:"prompt"`
}

type PromptBuilder struct {
	mu        sync.RWMutex
	templates map[Style]*template.Template
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		templates: make(map[Style]*template.Template),
	}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

// Styles lists every style that has an embedded template.
func Styles() []Style {
	return []Style{StyleEditor, StyleThirdPerson}
}

// BuildStreamerIntro renders the introduction prompt for payload with the
// default builder.
func BuildStreamerIntro(style Style, payload domain.ChannelPayload) (string, error) {
	return DefaultPromptBuilder().Render(style, payload)
}

// Render executes the style's template and trims surrounding whitespace.
func (pb *PromptBuilder) Render(style Style, payload domain.ChannelPayload) (string, error) {
	tmpl, err := pb.getTemplate(style)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, payload); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", style, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func (pb *PromptBuilder) getTemplate(style Style) (*template.Template, error) {
	pb.mu.RLock()
	if tmpl, ok := pb.templates[style]; ok {
		pb.mu.RUnlock()
		return tmpl, nil
	}
	pb.mu.RUnlock()

	name, ok := styleFiles[style]
	if !ok {
		return nil, fmt.Errorf("unknown prompt style %q", style)
	}

	content, err := templateFS.ReadFile(filepath.ToSlash(filepath.Join("templates", name)))
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	var doc templateDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode prompt template %s: %w", name, err)
	}

	tmpl, err := template.New(string(style)).Option("missingkey=zero").Parse(doc.Prompt)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[style] = tmpl

	return tmpl, nil
}

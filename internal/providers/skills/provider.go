package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/irislabs/agentshell/internal/shared/types"
)

// SkillFile is the canonical entry point of a skill directory.
const SkillFile = "SKILL.md"

// Meta is the YAML front matter of a SKILL.md file. All fields are optional;
// missing title and description fall back to the markdown body.
type Meta struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Version     string   `yaml:"version"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
}

// Skill is one discovered skill, reported by Status.
type Skill struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
}

// Provider serves markdown skill documents from a skills directory.
//
// A skill id names a directory under the skills root: "python" resolves to
// skills/python/SKILL.md. Sub-skills use slash ids: "python/debugging" tries
// skills/python/debugging.md first, then skills/python/debugging/SKILL.md.
type Provider struct {
	dir string
}

// NewProvider creates a skills provider rooted at dir.
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "skills",
		Name:        "Skills Service",
		Description: "Markdown skill documents the agent can load on demand",
		Category:    types.CategorySkills,
		Capabilities: []string{
			"discovery",
			"sub_skills",
		},
		Tools: []types.Tool{
			{
				ID:          "use_skill",
				Name:        "Use Skill",
				Description: "Get the content of a skill by its ID. Use 'skill_name' for a main skill or 'skill_name/sub_skill' for a sub-skill. Returns the skill's markdown content",
				Parameters: []types.Parameter{
					{Name: "skill_id", Type: "string", Description: "Skill ID, e.g. 'python' or 'python/debugging'", Required: true},
				},
				Returns: "object",
			},
		},
	}
}

// Execute routes to the appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "use_skill":
		return p.useSkill(params)
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) useSkill(params map[string]interface{}) (*types.Result, error) {
	skillID, ok := params["skill_id"].(string)
	if !ok || skillID == "" {
		return types.Failure("skill_id is required"), nil
	}

	if _, err := os.Stat(p.dir); err != nil {
		return types.Failure("skills directory not found"), nil
	}

	path := p.resolve(skillID)
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Failure(fmt.Sprintf("skill %q not found at %s", skillID, path)), nil
	}

	return types.Ok(map[string]interface{}{
		"skill_id": skillID,
		"content":  string(data),
		"path":     path,
	}), nil
}

// resolve maps a skill id to a file path. For sub-skills the flat .md file
// wins over the nested SKILL.md; when neither exists the flat path is
// returned so the caller's error names it.
func (p *Provider) resolve(skillID string) string {
	parts := strings.Split(strings.ReplaceAll(skillID, "\\", "/"), "/")
	base := filepath.Join(p.dir, parts[0])

	if len(parts) == 1 {
		return filepath.Join(base, SkillFile)
	}

	sub := filepath.Join(parts[1:]...)
	direct := filepath.Join(base, sub+".md")
	if _, err := os.Stat(direct); err == nil {
		return direct
	}
	nested := filepath.Join(base, sub, SkillFile)
	if _, err := os.Stat(nested); err == nil {
		return nested
	}
	return direct
}

// Status lists every discoverable skill with its parsed metadata.
func (p *Provider) Status() map[string]interface{} {
	skills := []Skill{}

	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return map[string]interface{}{
			"name":   "skills",
			"status": "ok",
			"skills": skills,
		}
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(p.dir, e.Name(), SkillFile))
		if err != nil {
			continue
		}
		skills = append(skills, parseSkill(e.Name(), string(data)))
	}

	return map[string]interface{}{
		"name":   "skills",
		"status": "ok",
		"skills": skills,
	}
}

// parseSkill extracts metadata from a SKILL.md document. Front matter fields
// take priority; the first markdown heading and first body paragraph serve
// as fallbacks, and the directory name backstops the title.
func parseSkill(name, content string) Skill {
	front, body := splitFrontMatter(content)

	var meta Meta
	if front != "" {
		// Malformed front matter degrades to the markdown fallbacks
		_ = yaml.Unmarshal([]byte(front), &meta)
	}

	skill := Skill{
		Name:        name,
		Title:       meta.Title,
		Description: meta.Description,
		Version:     meta.Version,
		Author:      meta.Author,
		Tags:        meta.Tags,
	}
	if skill.Tags == nil {
		skill.Tags = []string{}
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if skill.Title == "" && strings.HasPrefix(line, "# ") {
			skill.Title = strings.TrimSpace(line[2:])
			continue
		}
		if skill.Description == "" && !strings.HasPrefix(line, "#") {
			skill.Description = line
		}
		if skill.Title != "" && skill.Description != "" {
			break
		}
	}
	if skill.Title == "" {
		skill.Title = name
	}

	return skill
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// markdown body. Documents without front matter return an empty front part.
func splitFrontMatter(content string) (front, body string) {
	if !strings.HasPrefix(content, "---") {
		return "", content
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return "", content
	}
	return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
}

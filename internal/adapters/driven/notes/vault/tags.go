package vault

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// inlineTag matches #tag preceded by start of line or whitespace.
// Tags may contain letters, digits, _, - and / (nested tags).
var inlineTag = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_/-]+)`)

// ExtractTags returns the note's tags in order of first appearance, each
// prefixed with "#": frontmatter tags first, then inline tags from the body.
// Tags inside fenced code blocks and purely numeric tags are ignored.
func ExtractTags(content string) []string {
	front, body := splitFrontmatter(content)

	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" || isNumeric(tag) {
			return
		}
		key := strings.ToLower(tag)
		if seen[key] {
			return
		}
		seen[key] = true
		tags = append(tags, "#"+tag)
	}

	for _, tag := range frontmatterTags(front) {
		add(tag)
	}

	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, m := range inlineTag.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
	}

	return tags
}

// splitFrontmatter separates a leading YAML block delimited by --- lines.
func splitFrontmatter(content string) (front, body string) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return "", normalized
	}
	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", normalized
	}
	after := rest[end+len("\n---"):]
	if after != "" && after[0] != '\n' {
		return "", normalized
	}
	return rest[:end], strings.TrimPrefix(after, "\n")
}

// frontmatterTags reads the tags (or tag) key as a list or a string of
// comma or space separated values. Malformed YAML yields no tags.
func frontmatterTags(front string) []string {
	if strings.TrimSpace(front) == "" {
		return nil
	}
	var meta map[string]any
	if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
		return nil
	}

	var out []string
	for _, key := range []string{"tags", "tag"} {
		switch v := meta[key].(type) {
		case string:
			out = append(out, strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })...)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

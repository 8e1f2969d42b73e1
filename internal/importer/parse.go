package importer

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var inlineTagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// document is the parsed form of a dropped file.
type document struct {
	Title    string
	Category string
	Tags     []string
	Body     string
}

// parseDocument splits optional YAML frontmatter (title, category, tags)
// from the Markdown body. Title falls back to the first H1 heading; inline
// #tags in the body are merged with frontmatter tags. Invalid frontmatter
// is treated as body.
func parseDocument(data []byte) document {
	fm, body := splitFrontmatter(data)

	doc := document{Body: body}
	if fm != nil {
		if s, ok := fm["title"].(string); ok {
			doc.Title = strings.TrimSpace(s)
		}
		if s, ok := fm["category"].(string); ok {
			doc.Category = strings.TrimSpace(s)
		}
		if raw, ok := fm["tags"].([]interface{}); ok {
			for _, item := range raw {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					doc.Tags = append(doc.Tags, strings.TrimSpace(s))
				}
			}
		}
	}

	seen := make(map[string]struct{}, len(doc.Tags))
	for _, t := range doc.Tags {
		seen[t] = struct{}{}
	}
	for _, m := range inlineTagRe.FindAllStringSubmatch(body, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		doc.Tags = append(doc.Tags, m[1])
	}

	if doc.Title == "" {
		for _, line := range strings.Split(body, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "# ") {
				doc.Title = strings.TrimSpace(trimmed[2:])
				break
			}
		}
	}
	return doc
}

func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

package agent

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/gmyun1999/MY-LOG-BE/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

var plainFieldPattern = regexp.MustCompile(`^\+?[A-Za-z_][A-Za-z0-9_]*$`)

// tokenizer builds the dissect pattern for plain logs. Bare field names
// become capture groups, anything else is kept as a literal separator.
func tokenizer(fields []string) string {
	var parts []string
	for _, field := range fields {
		if plainFieldPattern.MatchString(field) {
			parts = append(parts, fmt.Sprintf("%%{%s}", field))
		} else {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, " ")
}

func render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

type plainCollectorView struct {
	ProjectID        string
	Hosts            []string
	LogPaths         []string
	MultilinePattern string
	Tokenizer        string
	Filters          []FilterCondition
}

// RenderCollectorConfig produces the collector yml for one project.
func RenderCollectorConfig(ctx *CollectorContext) (*RenderedConfig, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	var content []byte
	var err error
	if ctx.InputType == InputPlain {
		content, err = render("collector_plain.yml.tmpl", &plainCollectorView{
			ProjectID:        ctx.ProjectID,
			Hosts:            ctx.Hosts,
			LogPaths:         ctx.LogPaths,
			MultilinePattern: ctx.MultilinePattern,
			Tokenizer:        tokenizer(ctx.CustomPlainFields),
			Filters:          ctx.Filters,
		})
	} else {
		content, err = render("collector_json.yml.tmpl", ctx)
	}
	if err != nil {
		return nil, err
	}
	return &RenderedConfig{
		Filename: fmt.Sprintf("collector_%s.yml", ctx.ProjectID),
		Content:  content,
	}, nil
}

// RenderRouterConfig produces the router pipeline config.
func RenderRouterConfig(ctx *RouterContext) (*RenderedConfig, error) {
	ctx.ApplyDefaults()
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	content, err := render("router.conf.tmpl", ctx)
	if err != nil {
		return nil, err
	}
	return &RenderedConfig{
		Filename: fmt.Sprintf("router_%s.conf", ctx.ProjectID),
		Content:  content,
	}, nil
}

// RenderBootstrapScript produces the per-platform setup script. Windows
// scripts get CRLF line endings, everything else stays LF.
func RenderBootstrapScript(ctx *BootstrapContext) (*RenderedConfig, error) {
	var name string
	switch ctx.Platform {
	case domain.PlatformLinux:
		name = "setup-agent.sh.tmpl"
	case domain.PlatformWindows:
		name = "setup-agent.bat.tmpl"
	default:
		return nil, fmt.Errorf("unsupported platform: %s", ctx.Platform)
	}
	content, err := render(name, ctx)
	if err != nil {
		return nil, err
	}
	if ctx.Platform == domain.PlatformWindows {
		content = bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	return &RenderedConfig{
		Filename: ctx.ScriptName(),
		Content:  content,
	}, nil
}

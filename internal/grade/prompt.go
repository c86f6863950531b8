package grade

import (
	"context"
	"fmt"
	"os"

	"autograde/internal/config"
	"autograde/internal/project"
)

// truncationMarker is appended when a message body exceeds the configured
// budget.
const truncationMarker = "...[TRUNCATED]"

// transcript accumulates the feedback prompt for one grade result. The
// first message is always the instructor's system message.
type transcript struct {
	cfg  *config.Config
	msgs []Message
}

func newTranscript(cfg *config.Config) *transcript {
	t := &transcript{cfg: cfg}
	t.msgs = append(t.msgs, Message{
		Role:    RoleSystem,
		Content: cfg.Prompt.SystemMessage,
		Name:    NameInstructor,
	})
	return t
}

func (t *transcript) instructor(content string) {
	t.add(RoleSystem, NameInstructor, content)
}

func (t *transcript) student(content string) {
	t.add(RoleUser, NameStudent, content)
}

func (t *transcript) add(role, name, content string) {
	t.msgs = append(t.msgs, Message{
		Role:    role,
		Content: truncate(content, t.cfg.Prompt.TruncateBytes),
		Name:    name,
	})
}

// sourceOf attaches the file's source so feedback can reference the
// student's actual code. Unreadable files are skipped silently; the
// transcript is best effort.
func (t *transcript) sourceOf(f *project.SourceFile) {
	data, err := os.ReadFile(f.Path())
	if err != nil {
		return
	}
	t.student(fmt.Sprintf("Here is my %s:\n```\n%s\n```", f.FileName(), data))
}

// describeProject attaches the structural summary of the whole project.
func (t *transcript) describeProject(ctx context.Context, p *project.Project) {
	t.instructor("Structural summary of the submission:\n" + p.Describe(ctx))
}

func (t *transcript) messages() []Message {
	return t.msgs
}

// truncate cuts s at the byte budget, keeping the result valid UTF-8 by
// backing off any cut continuation bytes, and marks the cut.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && (s[cut]&0xC0) == 0x80 {
		cut--
	}
	return s[:cut] + truncationMarker
}

package templates

import "github.com/csg33k/paperdesk/internal/domain"

func paperTitle(p domain.Paper) string {
	return "Paper #" + itoa(p.ID)
}

// fileLabel names the confirmed file, or says there is none.
func fileLabel(p domain.Paper) string {
	if name := p.FileName(); name != "" {
		return name
	}
	return "no file"
}
